package obex

import (
	"context"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharathkunda/obexftp/errorkinds"
)

// readRawPacket reads one complete OBEX packet (request or response shape,
// they share the same 3-byte opcode+length prefix) off conn.
func readRawPacket(t *testing.T, conn io.Reader) []byte {
	t.Helper()
	head := make([]byte, 3)
	_, err := io.ReadFull(conn, head)
	require.NoError(t, err)
	total := int(binary.BigEndian.Uint16(head[1:3]))
	raw := make([]byte, total)
	copy(raw, head)
	if total > 3 {
		_, err := io.ReadFull(conn, raw[3:])
		require.NoError(t, err)
	}
	return raw
}

func writeSimpleResponse(t *testing.T, conn io.Writer, code ResponseCode) {
	t.Helper()
	pkt := []byte{byte(code), 0x00, 0x03}
	_, err := conn.Write(pkt)
	require.NoError(t, err)
}

func writeConnectResponse(t *testing.T, conn io.Writer, code ResponseCode) {
	t.Helper()
	pkt := make([]byte, 0, 7)
	pkt = append(pkt, byte(code), 0x00, 0x07)
	pkt = append(pkt, 0x10, 0x00) // version, flags
	pkt = append(pkt, 0x20, 0x00) // maxpktsize = 0x2000
	_, err := conn.Write(pkt)
	require.NoError(t, err)
}

func newTestSession(t *testing.T) (*Session, io.ReadWriteCloser) {
	t.Helper()
	transport, server := NewPipeTransports()
	s, err := Open(context.Background(), transport)
	require.NoError(t, err)
	return s, server
}

func TestConnectSucceedsOnFirstCandidate(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		readRawPacket(t, server)
		writeConnectResponse(t, server, ResponseSuccess)
	}()

	err := s.Connect(context.Background(), []byte("0000110600001000800000805f9b34fb"))
	assert.NoError(t, err)
	assert.True(t, s.connected)
	<-done
}

func TestConnectFallsBackToSecondCandidate(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		readRawPacket(t, server)
		writeConnectResponse(t, server, ResponseForbidden)
		readRawPacket(t, server)
		writeConnectResponse(t, server, ResponseSuccess)
	}()

	err := s.Connect(context.Background(), []byte("pcsuite-uuid-bytes.."), []byte("ftp-uuid-bytes......"))
	assert.NoError(t, err)
	<-done
}

func TestConnectReturnsRejectedWhenAllCandidatesFail(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		readRawPacket(t, server)
		writeConnectResponse(t, server, ResponseForbidden)
	}()

	err := s.Connect(context.Background(), []byte("only-candidate......"))
	assert.ErrorIs(t, err, errorkinds.ErrConnectRejected)
	<-done
}

func TestGetSingleShotSuccess(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		readRawPacket(t, server)

		hdrs := []header{{id: HeaderEndOfBody, data: []byte("hello")}}
		pkt, err := encodePacket(CommandGetFinal, nil, hdrs)
		require.NoError(t, err)
		pkt[0] = byte(ResponseSuccess)
		_, err = server.Write(pkt)
		require.NoError(t, err)
	}()

	sink := NewMemorySink()
	err := s.Get(context.Background(), "README.TXT", sink)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(sink.Bytes()))
	<-done
}

func TestPutStreamsChunksAndReadsFinalResponse(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()

	var received []byte
	done := make(chan struct{})
	go func() {
		defer close(done)
		// initial PUT packet (name+length headers, no body)
		readRawPacket(t, server)
		for {
			pkt := readRawPacket(t, server)
			hdrs, err := decodeHeaders(pkt[3:])
			require.NoError(t, err)
			isFinal := Command(pkt[0]) == CommandPutFinal
			for _, h := range hdrs {
				if h.ID == HeaderBody || h.ID == HeaderEndOfBody {
					received = append(received, h.Data...)
				}
			}
			if isFinal {
				break
			}
		}
		writeSimpleResponse(t, server, ResponseSuccess)
	}()

	src := NewBytesSource([]byte("the quick brown fox"))
	err := s.Put(context.Background(), "fox.txt", src, 20)
	require.NoError(t, err)
	assert.Equal(t, "the quick brown fox", string(received))
	<-done
}

func TestSessionRejectsOverlappingRequests(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()
	_ = server

	require.NoError(t, s.acquire())
	defer s.release()

	err := s.acquire()
	assert.Error(t, err)
}

func TestDisconnectSucceeds(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		readRawPacket(t, server)
		writeSimpleResponse(t, server, ResponseSuccess)
	}()

	err := s.Disconnect(context.Background())
	require.NoError(t, err)
	assert.False(t, s.connected)
	<-done
}

func TestTraceRecordsEventSequence(t *testing.T) {
	trace := NewTrace()
	transport, server := NewPipeTransports()
	s, err := Open(context.Background(), transport, WithEventHandler(trace.Handler))
	require.NoError(t, err)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		readRawPacket(t, server)
		writeConnectResponse(t, server, ResponseSuccess)
	}()

	require.NoError(t, s.Connect(context.Background(), nil))
	<-done

	kinds := trace.Kinds()
	require.NotEmpty(t, kinds)
	assert.Equal(t, EventConnecting, kinds[0])
	assert.Equal(t, EventOK, kinds[len(kinds)-1])

	blob, err := trace.Encode()
	require.NoError(t, err)
	assert.NotEmpty(t, blob)
}

func TestInfoDecodesAppParamFromResponse(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		readRawPacket(t, server)

		param := EncodeAppParam(AppParam{Code: 0x01, Value: 12345})
		hdrs := []header{{id: HeaderAppParam, data: param}}
		pkt, err := encodePacket(CommandGetFinal, nil, hdrs)
		require.NoError(t, err)
		pkt[0] = byte(ResponseSuccess)
		_, err = server.Write(pkt)
		require.NoError(t, err)
	}()

	value, err := s.Info(context.Background(), 0x01)
	require.NoError(t, err)
	assert.EqualValues(t, 12345, value)
	<-done
}

func TestDialWithDeadlineAcceptsContextWithDeadline(t *testing.T) {
	_, server := NewPipeTransports()
	defer server.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	dialWithDeadline(ctx, server)
}
