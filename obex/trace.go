package obex

import (
	"bytes"
	"sync"

	"github.com/ugorji/go/codec"
)

// traceEntry is one recorded Event, in a shape codec can round-trip so a
// test can serialize a whole run and diff it against a golden trace.
type traceEntry struct {
	Kind EventKind `codec:"kind"`
	Name string    `codec:"name"`
	Info uint32    `codec:"info"`
}

// Trace records every Event delivered to it, in order, for assertions in
// tests that care about the exact sequence of notifications a Session
// produced — not just its final return value.
type Trace struct {
	mu      sync.Mutex
	entries []traceEntry
}

// NewTrace returns an empty Trace. Use its Handler as a Session's
// EventHandler (wrap it if the test also wants its own handling).
func NewTrace() *Trace {
	return &Trace{}
}

// Handler is installed via WithEventHandler to start recording.
func (t *Trace) Handler(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, traceEntry{Kind: ev.Kind, Name: ev.Name, Info: ev.Info})
}

// Kinds returns the recorded event kinds in order, the form most tests
// assert against.
func (t *Trace) Kinds() []EventKind {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]EventKind, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Kind
	}
	return out
}

// Encode serializes the recorded trace with a compact binary codec, used
// when a test wants to store or compare a trace as an opaque blob rather
// than asserting on individual fields.
func (t *Trace) Encode() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, &codec.CborHandle{})
	if err := enc.Encode(t.entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
