package snmpscan

// CacheEntry is the per-responder SNMP discovery state, per spec.md §3
// "SNMP cache entry". It is allocated on the first DEVICE_TYPE reply from an
// address and populated incrementally by the follow-up GETs.
type CacheEntry struct {
	Address       string
	CanonicalAddr string
	URI           string
	DeviceID      string
	Info          string // hrDeviceDescr value, repaired
	Location      string
	MakeAndModel  string
	Reported      bool
	sawDeviceType bool
}

// Cache keys entries by canonical address string.
type Cache struct {
	entries map[string]*CacheEntry
	order   []string
}

// NewCache creates an empty SNMP cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*CacheEntry)}
}

// GetOrCreate returns the entry for addr, creating it (and recording
// insertion order) if this is the first time addr has been seen.
func (c *Cache) GetOrCreate(addr string) *CacheEntry {
	if e, ok := c.entries[addr]; ok {
		return e
	}
	e := &CacheEntry{Address: addr, CanonicalAddr: addr}
	c.entries[addr] = e
	c.order = append(c.order, addr)
	return e
}

// Lookup returns the entry for addr without creating it.
func (c *Cache) Lookup(addr string) (*CacheEntry, bool) {
	e, ok := c.entries[addr]
	return e, ok
}

// All returns every cache entry in first-seen order.
func (c *Cache) All() []*CacheEntry {
	out := make([]*CacheEntry, 0, len(c.order))
	for _, a := range c.order {
		out = append(out, c.entries[a])
	}
	return out
}

// Ready reports whether an entry has enough data to be emitted: it has both
// an Info string and a MakeAndModel, per spec.md §3's lifecycle note.
func (e *CacheEntry) Ready() bool {
	return e.Info != "" && e.MakeAndModel != ""
}
