package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRFCOMMChannelFindsUInt8Channel(t *testing.T) {
	raw := []byte{0x00, 0x19, 0x00, 0x03, 0x08, 0x0C, 0x00}
	ch, ok := extractRFCOMMChannel(raw)
	assert.True(t, ok)
	assert.Equal(t, 12, ch)
}

func TestExtractRFCOMMChannelMissing(t *testing.T) {
	_, ok := extractRFCOMMChannel([]byte{0x01, 0x02, 0x03})
	assert.False(t, ok)
}

func TestBuildServiceSearchAttrRequestHasPatchedLength(t *testing.T) {
	req := buildServiceSearchAttrRequest(pcSuiteUUID)
	assert.Equal(t, byte(0x06), req[0])
	paramLen := int(req[3])<<8 | int(req[4])
	assert.Equal(t, len(req)-5, paramLen)
}
