package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGetDelete(t *testing.T) {
	c := NewCache()
	dev := Device{Address: Address{1, 2, 3, 4, 5, 6}, Name: "phone"}

	c.Put(dev)
	got, ok := c.Get(dev.Address)
	require.True(t, ok)
	assert.Equal(t, "phone", got.Name)

	assert.Len(t, c.Snapshot(), 1)

	c.Delete(dev.Address)
	_, ok = c.Get(dev.Address)
	assert.False(t, ok)
}

func TestInquiryOptionsValidateRejectsOutOfRange(t *testing.T) {
	opts := InquiryOptions{Duration: 200}
	assert.Error(t, opts.Validate())
}

func TestInquiryOptionsWithDefaults(t *testing.T) {
	opts := InquiryOptions{}.withDefaults()
	assert.EqualValues(t, 8, opts.Duration)
	assert.EqualValues(t, 10, opts.MaxResponses)
}
