package obex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	hdrs := []header{
		{id: HeaderName, data: encodeUnicode("IMAGE.JPG")},
		{id: HeaderLength, data: encodeUint32(1234)},
		{id: HeaderTarget, data: []byte{1, 2, 3, 4}},
	}

	var raw []byte
	for _, h := range hdrs {
		enc, err := encodeHeader(h)
		require.NoError(t, err)
		raw = append(raw, enc...)
	}

	decoded, err := decodeHeaders(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 3)

	assert.Equal(t, HeaderName, decoded[0].ID)
	assert.Equal(t, HeaderLength, decoded[1].ID)
	assert.Equal(t, uint32(1234), decodeUint32(decoded[1].Data))
	assert.Equal(t, HeaderTarget, decoded[2].ID)
	assert.Equal(t, []byte{1, 2, 3, 4}, decoded[2].Data)
}

func decodeUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func TestEncodePacketRejectsOversize(t *testing.T) {
	big := make([]byte, 0x10000)
	_, err := encodePacket(CommandPutFinal, nil, []header{{id: HeaderEndOfBody, data: big}})
	assert.Error(t, err)
}

func TestDecodeResponseRejectsLengthMismatch(t *testing.T) {
	raw := []byte{byte(ResponseSuccess), 0x00, 0x10} // claims 16 bytes, has 3
	_, err := decodeResponse(raw, false)
	assert.Error(t, err)
}

func TestAppParamRoundTrip(t *testing.T) {
	p := AppParam{Code: 0x07, Value: 42}
	enc := EncodeAppParam(p)
	require.Len(t, enc, appParamEncodedLen)

	got, ok := DecodeAppParam(enc)
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestDecodeAppParamRejectsShort(t *testing.T) {
	_, ok := DecodeAppParam([]byte{0x01, 0x02})
	assert.False(t, ok)
}
