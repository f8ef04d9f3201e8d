// Package cache provides the in-memory caches for extraction results
// and final display colours. Both are explicit injected objects with
// their capacity and eviction policy set at construction; nothing here
// is a package-level singleton.
package cache

import (
	"sync"

	"github.com/jmylchreest/avatint/internal/colour"
)

// DefaultSwatchEntries is the default extraction cache capacity.
const DefaultSwatchEntries = 50

// SwatchCache memoizes extraction results per image identity. Eviction
// is strict insertion-order FIFO: when the capacity is exceeded, the
// single oldest-inserted entry is removed. Safe for concurrent use.
type SwatchCache struct {
	mu         sync.Mutex
	entries    map[string]colour.SwatchSet
	order      []string
	maxEntries int

	hits   int
	misses int
}

// NewSwatchCache creates a swatch cache holding at most maxEntries
// swatch sets. A non-positive capacity uses DefaultSwatchEntries.
func NewSwatchCache(maxEntries int) *SwatchCache {
	if maxEntries <= 0 {
		maxEntries = DefaultSwatchEntries
	}
	return &SwatchCache{
		entries:    make(map[string]colour.SwatchSet, maxEntries),
		order:      make([]string, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Get returns the cached swatch set for an image identity.
func (c *SwatchCache) Get(key string) (colour.SwatchSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return set, ok
}

// Put stores a swatch set for an image identity. Re-inserting an
// existing key refreshes its value without changing its insertion
// position. When the capacity is exceeded the oldest entry is evicted.
func (c *SwatchCache) Put(key string, set colour.SwatchSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = set
		return
	}

	c.entries[key] = set
	c.order = append(c.order, key)

	if len(c.entries) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Invalidate removes one image identity, for example after its avatar
// file changed on disk.
func (c *SwatchCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

// Clear drops every entry.
func (c *SwatchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]colour.SwatchSet, c.maxEntries)
	c.order = c.order[:0]
}

// Len returns the number of cached entries.
func (c *SwatchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counters.
func (c *SwatchCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// removeLocked deletes a key from the map and the order slice.
// The caller must hold the mutex.
func (c *SwatchCache) removeLocked(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
