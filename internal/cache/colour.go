package cache

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jmylchreest/avatint/internal/colour"
)

// DefaultColourEntries is the default final-colour cache capacity.
const DefaultColourEntries = 100

// evictFraction is the share of entries dropped in one eviction pass.
const evictFraction = 5 // oldest 1/5 of capacity

// ColourKey builds the deterministic composite key for a final display
// colour: the entity that owns the avatar, the theme it is shown on and
// the enhancement adjustments applied. The same image legitimately
// produces different final colours under different settings, so all of
// them key the cache.
func ColourKey(kind, id string, theme colour.Theme, opts colour.EnhanceOptions) string {
	return fmt.Sprintf("%s/%s|%s|boost=%t|h=%g|s=%g|l=%g",
		kind, id, theme, opts.BoostVibrancy, opts.HueAdjust, opts.SatAdjust, opts.LumAdjust)
}

// entityPrefix is the key prefix covering every cached colour for one
// entity, across themes and adjustments.
func entityPrefix(kind, id string) string {
	return fmt.Sprintf("%s/%s|", kind, id)
}

// kindPrefix is the key prefix covering every cached colour for one
// entity kind.
func kindPrefix(kind string) string {
	return kind + "/"
}

// ColourStats holds colour cache counters.
type ColourStats struct {
	Hits      int
	Misses    int
	Evictions int
	Entries   int
}

// ColourCache caches final display colours. Unlike the swatch cache it
// evicts in batches: when the capacity is exceeded the oldest fifth of
// the capacity is dropped in one pass, so eviction cost is paid rarely
// instead of on every insert. Safe for concurrent use.
type ColourCache struct {
	mu         sync.Mutex
	entries    map[string]colour.RGB
	order      []string
	maxEntries int

	hits      int
	misses    int
	evictions int
}

// NewColourCache creates a colour cache holding at most maxEntries
// colours. A non-positive capacity uses DefaultColourEntries.
func NewColourCache(maxEntries int) *ColourCache {
	if maxEntries <= 0 {
		maxEntries = DefaultColourEntries
	}
	return &ColourCache{
		entries:    make(map[string]colour.RGB, maxEntries),
		order:      make([]string, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Get returns the cached colour for a key.
func (c *ColourCache) Get(key string) (colour.RGB, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rgb, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return rgb, ok
}

// Put stores a colour. When the capacity is exceeded, the oldest batch
// of entries is evicted in insertion order.
func (c *ColourCache) Put(key string, rgb colour.RGB) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = rgb
		return
	}

	c.entries[key] = rgb
	c.order = append(c.order, key)

	if len(c.entries) > c.maxEntries {
		c.evictBatchLocked()
	}
}

// evictBatchLocked drops the oldest fifth of the capacity. The caller
// must hold the mutex.
func (c *ColourCache) evictBatchLocked() {
	batch := c.maxEntries / evictFraction
	if batch < 1 {
		batch = 1
	}
	if batch > len(c.order) {
		batch = len(c.order)
	}

	for _, key := range c.order[:batch] {
		delete(c.entries, key)
		c.evictions++
	}
	c.order = append(c.order[:0], c.order[batch:]...)
}

// InvalidateEntity removes every cached colour for one entity, across
// all themes and adjustment combinations.
func (c *ColourCache) InvalidateEntity(kind, id string) int {
	return c.invalidatePrefix(entityPrefix(kind, id))
}

// InvalidateKind removes every cached colour for one entity kind, used
// when a kind-wide setting changes.
func (c *ColourCache) InvalidateKind(kind string) int {
	return c.invalidatePrefix(kindPrefix(kind))
}

// invalidatePrefix removes all entries whose key starts with prefix and
// returns how many were dropped.
func (c *ColourCache) invalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	kept := c.order[:0]
	for _, key := range c.order {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept
	return removed
}

// Clear drops every entry.
func (c *ColourCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]colour.RGB, c.maxEntries)
	c.order = c.order[:0]
}

// Len returns the number of cached entries.
func (c *ColourCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *ColourCache) Stats() ColourStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ColourStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   len(c.entries),
	}
}
