package obex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigateSkipsEmptyComponents(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()

	var names []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2; i++ {
			pkt := readRawPacket(t, server)
			hdrs, err := decodeHeaders(pkt[5:]) // skip flags/constants prefix
			require.NoError(t, err)
			for _, h := range hdrs {
				if h.ID == HeaderName {
					names = append(names, string(h.Data))
				}
			}
			writeSimpleResponse(t, server, ResponseSuccess)
		}
	}()

	err := s.Navigate(context.Background(), "/DCIM//Camera/")
	require.NoError(t, err)
	<-done
	assert.Len(t, names, 2)
}

func TestNavigateEmptyPathAscendsOnce(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		pkt := readRawPacket(t, server)
		hdrs, err := decodeHeaders(pkt[5:]) // skip flags/constants prefix
		require.NoError(t, err)
		for _, h := range hdrs {
			assert.NotEqual(t, HeaderName, h.ID)
		}
		writeSimpleResponse(t, server, ResponseSuccess)
	}()

	err := s.Navigate(context.Background(), "")
	require.NoError(t, err)
	<-done
}

type fakeWalker struct {
	steps []walkStep
}

type walkStep struct {
	action VisitAction
	name   string
}

func (w fakeWalker) Walk(root string, visit func(action VisitAction, name string) error) error {
	for _, s := range w.steps {
		if err := visit(s.action, s.name); err != nil {
			return err
		}
	}
	return nil
}

func TestPutTreeRejectsNilWalker(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()
	_ = server

	err := s.PutTree(context.Background(), "/tmp/x", nil)
	assert.Error(t, err)
}
