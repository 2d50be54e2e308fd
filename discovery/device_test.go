package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressStringByteSwapsToDisplayOrder(t *testing.T) {
	// Wire order (as read off HCI) little-endian; display form is the
	// conventional big-endian reading.
	wire := Address{0xFB, 0x34, 0x9B, 0x5F, 0x80, 0x00}
	assert.Equal(t, "00:80:5F:9B:34:FB", wire.String())
}

func TestParseAddressRoundTripsWithAddressString(t *testing.T) {
	addr, err := parseAddress("00:80:5F:9B:34:FB")
	assert.NoError(t, err)
	assert.Equal(t, "00:80:5F:9B:34:FB", addr.String())
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	_, err := parseAddress("not-an-address")
	assert.Error(t, err)
}
