package obex

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/sharathkunda/obexftp/errorkinds"
)

// Transport is the Transport Binder (component A): anything that can give a
// Session a byte-oriented connection to an OBEX peer. It generalizes the
// original client's compile-time choice of Bluetooth RFCOMM, IrDA, or a
// custom serial cable into one runtime interface.
type Transport interface {
	// Dial establishes the underlying link and returns a stream connection
	// the Session will frame OBEX packets over. Whether Dial may be called
	// again after that connection is closed depends on the implementation;
	// CableTransport allows only one successful Dial.
	Dial(ctx context.Context) (io.ReadWriteCloser, error)

	// Name identifies the transport in log lines and error messages, e.g.
	// "rfcomm", "irda", "cable".
	Name() string
}

// RFCOMMTransport dials a Bluetooth RFCOMM channel on a remote device.
// Address and Channel are normally discovered ahead of time by the
// discovery package's SDP browse.
type RFCOMMTransport struct {
	Address string
	Channel int
	Dialer  func(ctx context.Context, address string, channel int) (io.ReadWriteCloser, error)
}

func (t *RFCOMMTransport) Name() string { return "rfcomm" }

func (t *RFCOMMTransport) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	if t.Dialer == nil {
		return nil, fault.Wrap(errorkinds.ErrTransportInit, fmsg.With("no RFCOMM dialer configured"))
	}
	conn, err := t.Dialer(ctx, t.Address, t.Channel)
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.Unavailable), fmsg.With("dialing RFCOMM channel"))
	}
	return conn, nil
}

// IrDATransport dials an IrDA peer by device name, the profile the original
// client called "irda-discover" plus a raw IrLPT/IrOBEX connect.
type IrDATransport struct {
	DeviceName string
	Dialer     func(ctx context.Context, deviceName string) (io.ReadWriteCloser, error)
}

func (t *IrDATransport) Name() string { return "irda" }

func (t *IrDATransport) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	if t.Dialer == nil {
		return nil, fault.Wrap(errorkinds.ErrTransportInit, fmsg.With("no IrDA dialer configured"))
	}
	conn, err := t.Dialer(ctx, t.DeviceName)
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.Unavailable), fmsg.With("dialing IrDA peer"))
	}
	return conn, nil
}

// CableTransport wraps an already-open connection, e.g. a serial cable or a
// connection the caller dialed by hand. Open is invoked on each Dial until
// one succeeds; any Dial after a successful one returns ErrTransportClosed.
type CableTransport struct {
	Open func() (io.ReadWriteCloser, error)
	used bool
}

func (t *CableTransport) Name() string { return "cable" }

func (t *CableTransport) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	if t.used {
		return nil, fault.Wrap(errorkinds.ErrTransportClosed, fmsg.With("cable transport already consumed"))
	}
	if t.Open == nil {
		return nil, fault.Wrap(errorkinds.ErrTransportInit, fmsg.With("no cable open func configured"))
	}
	conn, err := t.Open()
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.Unavailable), fmsg.With("opening cable connection"))
	}
	t.used = true
	return conn, nil
}

// LoopbackTransport connects two in-process ends of a net.Pipe, used by
// this package's own tests and by any caller exercising the client against
// an in-process OBEX server double.
type LoopbackTransport struct {
	Peer io.ReadWriteCloser
}

func (t *LoopbackTransport) Name() string { return "loopback" }

func (t *LoopbackTransport) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	if t.Peer == nil {
		return nil, fault.Wrap(errorkinds.ErrTransportInit, fmsg.With("loopback transport has no peer"))
	}
	return t.Peer, nil
}

// NewPipeTransports returns a connected pair of loopback transports,
// suitable for wiring a Session directly to an in-process fake server in
// tests without touching the network stack.
func NewPipeTransports() (client Transport, server io.ReadWriteCloser) {
	a, b := net.Pipe()
	return &LoopbackTransport{Peer: a}, b
}

// dialWithDeadline applies ctx's deadline (if any) to the connection once
// dialed. The deadline stays in force for every later read and write on
// that connection; a ctx without a deadline clears any deadline already set.
func dialWithDeadline(ctx context.Context, conn io.ReadWriteCloser) {
	type deadliner interface {
		SetDeadline(t time.Time) error
	}
	d, ok := conn.(deadliner)
	if !ok {
		return
	}
	if dl, set := ctx.Deadline(); set {
		_ = d.SetDeadline(dl)
	} else {
		_ = d.SetDeadline(time.Time{})
	}
}
