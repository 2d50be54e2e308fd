package obex

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopConn struct{}

func (nopConn) Read([]byte) (int, error)  { return 0, io.EOF }
func (nopConn) Write([]byte) (int, error) { return 0, nil }
func (nopConn) Close() error              { return nil }

func TestRFCOMMTransportRequiresDialer(t *testing.T) {
	tr := &RFCOMMTransport{Address: "00:00:00:00:00:00", Channel: 9}
	_, err := tr.Dial(context.Background())
	assert.Error(t, err)
}

func TestRFCOMMTransportDialsThroughConfiguredDialer(t *testing.T) {
	var gotAddr string
	var gotChannel int
	tr := &RFCOMMTransport{
		Address: "11:22:33:44:55:66",
		Channel: 4,
		Dialer: func(ctx context.Context, address string, channel int) (io.ReadWriteCloser, error) {
			gotAddr, gotChannel = address, channel
			return nopConn{}, nil
		},
	}
	conn, err := tr.Dial(context.Background())
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.Equal(t, "11:22:33:44:55:66", gotAddr)
	assert.Equal(t, 4, gotChannel)
}

func TestIrDATransportPropagatesDialerError(t *testing.T) {
	boom := errors.New("no such device")
	tr := &IrDATransport{
		DeviceName: "phone",
		Dialer: func(ctx context.Context, name string) (io.ReadWriteCloser, error) {
			return nil, boom
		},
	}
	_, err := tr.Dial(context.Background())
	assert.Error(t, err)
}

func TestCableTransportConsumedOnce(t *testing.T) {
	tr := &CableTransport{Open: func() (io.ReadWriteCloser, error) { return nopConn{}, nil }}
	_, err := tr.Dial(context.Background())
	require.NoError(t, err)

	_, err = tr.Dial(context.Background())
	assert.Error(t, err)
}

func TestLoopbackTransportDialReturnsPeer(t *testing.T) {
	client, server := NewPipeTransports()
	conn, err := client.Dial(context.Background())
	require.NoError(t, err)
	require.NotNil(t, conn)
	require.NotNil(t, server)
}
