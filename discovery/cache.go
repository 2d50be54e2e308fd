package discovery

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Cache holds the most recently discovered Device per address, so a long-
// running caller (e.g. a TUI listing nearby devices) can refresh its view
// from repeated short inquiries without re-browsing SDP for devices it
// has already resolved a channel for.
type Cache struct {
	devices *xsync.MapOf[Address, Device]
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{devices: xsync.NewMapOf[Address, Device]()}
}

// Put stores or overwrites d, keyed by its address.
func (c *Cache) Put(d Device) {
	c.devices.Store(d.Address, d)
}

// Get returns the cached Device for addr, if any.
func (c *Cache) Get(addr Address) (Device, bool) {
	return c.devices.Load(addr)
}

// Delete removes addr from the cache.
func (c *Cache) Delete(addr Address) {
	c.devices.Delete(addr)
}

// Snapshot returns every currently cached Device, in no particular order.
func (c *Cache) Snapshot() []Device {
	out := make([]Device, 0, c.devices.Size())
	c.devices.Range(func(_ Address, d Device) bool {
		out = append(out, d)
		return true
	})
	return out
}
