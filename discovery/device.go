package discovery

import "fmt"

// Address is a Bluetooth device address, stored in the byte order it
// arrives over HCI (little-endian) and rendered in the conventional
// big-endian "XX:XX:XX:XX:XX:XX" display form on demand.
type Address [6]byte

// String renders the address byte-swapped into its conventional display
// order, matching the original discovery code's use of baswap before
// formatting with batostr.
func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[5], a[4], a[3], a[2], a[1], a[0])
}

// Device is one peer reported by an HCI inquiry, optionally enriched with
// its SDP browse result once Browse has been called for it.
type Device struct {
	Address Address
	Name    string

	// Channel is the RFCOMM channel discovered for the preferred service,
	// or 0 if Browse hasn't run yet or found nothing.
	Channel int
	// TargetUUID is the 128-bit service UUID the channel was found under,
	// ready to pass straight to obex.Session.Connect.
	TargetUUID []byte
}
