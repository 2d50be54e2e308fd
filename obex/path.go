package obex

import (
	"context"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"

	"github.com/sharathkunda/obexftp/errorkinds"
)

// VisitAction tells a TreeWalker callback what kind of step it is being
// told about as it descends a local directory tree.
type VisitAction int

const (
	// VisitFile names a regular file to transfer.
	VisitFile VisitAction = iota
	// VisitGoingDeeper names a directory the walker is about to descend
	// into; the server-side SETPATH should create/enter it.
	VisitGoingDeeper
	// VisitGoingUp signals the walker has finished a directory and is
	// returning to its parent; the server-side SETPATH should ascend.
	VisitGoingUp
)

// TreeWalker traverses a local directory tree, calling visit once per file
// and once around each subdirectory. It replaces the original client's
// destructive NUL-splitting path walk with a callback-driven interface a
// caller can satisfy however suits their filesystem.
type TreeWalker interface {
	Walk(root string, visit func(action VisitAction, name string) error) error
}

// Navigate drives a sequence of SetPath calls to reach fullpath from the
// server's current directory, splitting on "/" and skipping empty
// components so a leading or doubled slash doesn't produce a spurious
// empty-name SETPATH. An empty fullpath is the null-name case: it issues
// exactly one SETPATH-up rather than sending nothing at all.
func (s *Session) Navigate(ctx context.Context, fullpath string) error {
	if fullpath == "" {
		return s.NavigateUp(ctx, 1)
	}
	for _, part := range strings.Split(fullpath, "/") {
		if part == "" {
			continue
		}
		if err := s.SetPath(ctx, part, false); err != nil {
			return fault.Wrap(err, fmsg.With("navigating to "+fullpath))
		}
	}
	return nil
}

// NavigateUp ascends n directory levels.
func (s *Session) NavigateUp(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := s.SetPath(ctx, "", true); err != nil {
			return fault.Wrap(err, fmsg.With("navigating up"))
		}
	}
	return nil
}

// PutTree walks root with walker and mirrors it onto the server's current
// directory: each file is streamed with PutFile, each subdirectory entered
// with SetPath (creating it if the server allows), and each directory exit
// ascended with NavigateUp. The walker, not this method, decides traversal
// order and which entries are visited at all.
func (s *Session) PutTree(ctx context.Context, root string, walker TreeWalker) error {
	if walker == nil {
		return fault.Wrap(errorkinds.ErrInvalidArgument, fmsg.With("PutTree requires a TreeWalker"))
	}

	return walker.Walk(root, func(action VisitAction, name string) error {
		switch action {
		case VisitGoingDeeper:
			return s.setPathCreate(ctx, name)
		case VisitGoingUp:
			return s.NavigateUp(ctx, 1)
		case VisitFile:
			return s.PutFile(ctx, name, baseName(name))
		default:
			return nil
		}
	})
}

// setPathCreate descends into name, allowing the server to create it if it
// doesn't already exist — the one navigation step that differs from the
// read-only Navigate/SetPath pair, which always asks the server not to
// create anything.
func (s *Session) setPathCreate(ctx context.Context, name string) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	obj := newObject(CommandSetPath)
	obj.addHeader(setPathFlagsHeaderID, []byte{byte(SetPathDown), 0x00}, StreamWhole)
	obj.addHeader(HeaderName, encodeUnicode(name), StreamWhole)

	resp, err := s.roundTrip(name, obj, false)
	if err != nil {
		return err
	}
	if !resp.Code.IsSuccess() {
		s.emit(Event{Kind: EventErr, Name: name})
		return fault.Wrap(errorkinds.ErrProtocolFailure, fmsg.With("server rejected SETPATH (create)"))
	}
	s.emit(Event{Kind: EventOK, Name: name})
	return nil
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
