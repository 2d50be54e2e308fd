package discovery

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"golang.org/x/sys/unix"

	"github.com/sharathkunda/obexftp/errorkinds"
	"github.com/sharathkunda/obexftp/obex"
)

// NewRFCOMMDialer returns the dial function an obex.RFCOMMTransport needs,
// backed by a raw AF_BLUETOOTH RFCOMM socket. address is the device's
// display-form "XX:XX:XX:XX:XX:XX" address, the same form Device.Address
// renders.
func NewRFCOMMDialer() func(ctx context.Context, address string, channel int) (io.ReadWriteCloser, error) {
	return func(ctx context.Context, address string, channel int) (io.ReadWriteCloser, error) {
		addr, err := parseAddress(address)
		if err != nil {
			return nil, fault.Wrap(errorkinds.ErrInvalidAddress, fmsg.With(err.Error()))
		}

		fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM, unix.BTPROTO_RFCOMM)
		if err != nil {
			return nil, fault.Wrap(errorkinds.ErrTransportInit, ftag.With(ftag.Unavailable),
				fmsg.With("opening RFCOMM socket: "+err.Error()))
		}

		sa := &unix.SockaddrRFCOMM{Channel: uint8(channel), Addr: addr}
		if err := unix.Connect(fd, sa); err != nil {
			unix.Close(fd)
			return nil, fault.Wrap(errorkinds.ErrLinkError, ftag.With(ftag.Unavailable),
				fmsg.With("connecting RFCOMM channel: "+err.Error()))
		}

		return os.NewFile(uintptr(fd), "rfcomm"), nil
	}
}

// NewTransport builds the obex.Transport for dev's preferred service,
// requiring Browse to have already populated dev.Channel.
func NewTransport(dev Device) (obex.Transport, error) {
	if dev.Channel == 0 {
		return nil, fault.Wrap(errorkinds.ErrServiceNotFound, fmsg.With("device has no browsed RFCOMM channel"))
	}
	return &obex.RFCOMMTransport{
		Address: dev.Address.String(),
		Channel: dev.Channel,
		Dialer:  NewRFCOMMDialer(),
	}, nil
}

// parseAddress parses a "XX:XX:XX:XX:XX:XX" display-form address into its
// little-endian wire order, the byte order Address/SockaddrRFCOMM expect.
func parseAddress(s string) (Address, error) {
	var a Address
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return a, fault.Wrap(errorkinds.ErrInvalidAddress, fmsg.With("malformed address "+s))
	}
	var display Address
	for i, p := range parts {
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return a, fault.Wrap(errorkinds.ErrInvalidAddress, fmsg.With("non-hex byte in address "+s))
		}
		display[i] = byte(b)
	}
	return reverseAddr(display), nil
}
