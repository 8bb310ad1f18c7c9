package apiclient

import (
	"sync"
	"time"
)

// cache is a process-wide read-through response cache keyed by endpoint+tenant.
// It is a pure performance optimization, never a correctness source: concurrent
// reads to the same key before the first resolves will both miss and both hit
// the network, and any successful write clears the whole map.
type (
	cacheEntry struct {
		data     []byte
		storedAt time.Time
	}

	cache struct {
		mu      sync.RWMutex
		ttl     time.Duration
		now     func() time.Time // injected for deterministic tests
		entries map[string]cacheEntry
	}
)

func newCache(ttl time.Duration, now func() time.Time) *cache {
	if now == nil {
		now = time.Now
	}
	return &cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the cached body for key when younger than the TTL.
func (c *cache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return entry.data, true
}

func (c *cache) set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, storedAt: c.now()}
}

// clear drops every entry. Deliberately coarse: invoked on any successful
// write and on tenant change.
func (c *cache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
