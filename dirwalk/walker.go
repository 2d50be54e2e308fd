// Package dirwalk provides the default obex.TreeWalker: a thin wrapper over
// path/filepath.WalkDir. It is not part of the client engine's core; a
// caller that needs a different traversal order or filter can implement
// obex.TreeWalker directly instead of using this package.
package dirwalk

import (
	"io/fs"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"github.com/sharathkunda/obexftp/obex"
)

// Default walks a local directory tree depth-first using path/filepath,
// reporting each file and each directory's entry/exit to visit.
//
// filepath.WalkDir only calls back pre-order, so Walk tracks the stack of
// directories currently entered itself and emits VisitGoingUp for each one
// popped when a sibling at a shallower depth is reached.
type Default struct{}

// Walk implements obex.TreeWalker.
func (Default) Walk(root string, visit func(action obex.VisitAction, name string) error) error {
	var stack []string

	popTo := func(depth int) error {
		for len(stack) > depth {
			stack = stack[:len(stack)-1]
			if err := visit(obex.VisitGoingUp, ""); err != nil {
				return err
			}
		}
		return nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fault.Wrap(err, fmsg.With("walking "+path))
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fault.Wrap(err, fmsg.With("computing relative path for "+path))
		}
		depth := len(splitPath(rel)) - 1

		if err := popTo(depth); err != nil {
			return err
		}

		if d.IsDir() {
			stack = append(stack, d.Name())
			return visit(obex.VisitGoingDeeper, d.Name())
		}
		return visit(obex.VisitFile, path)
	})
	if err != nil {
		return err
	}
	return popTo(0)
}

// splitPath splits a relative, filepath-separator-joined path into its
// components.
func splitPath(rel string) []string {
	var parts []string
	for {
		dir, file := filepath.Split(rel)
		if file != "" {
			parts = append([]string{file}, parts...)
		}
		if dir == "" {
			break
		}
		rel = filepath.Clean(dir)
		if rel == "." {
			break
		}
	}
	return parts
}
