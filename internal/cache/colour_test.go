package cache

import (
	"fmt"
	"testing"

	"github.com/jmylchreest/avatint/internal/colour"
)

func TestColourKeyDeterministic(t *testing.T) {
	opts := colour.EnhanceOptions{HueAdjust: 10, SatAdjust: -5, LumAdjust: 2.5}

	a := ColourKey("character", "alice", colour.ThemeDark, opts)
	b := ColourKey("character", "alice", colour.ThemeDark, opts)
	if a != b {
		t.Errorf("identical inputs produced different keys:\n%s\n%s", a, b)
	}

	variants := []string{
		ColourKey("persona", "alice", colour.ThemeDark, opts),
		ColourKey("character", "bob", colour.ThemeDark, opts),
		ColourKey("character", "alice", colour.ThemeLight, opts),
		ColourKey("character", "alice", colour.ThemeDark, colour.EnhanceOptions{BoostVibrancy: true}),
		ColourKey("character", "alice", colour.ThemeDark, colour.EnhanceOptions{HueAdjust: 11, SatAdjust: -5, LumAdjust: 2.5}),
	}
	seen := map[string]bool{a: true}
	for _, v := range variants {
		if seen[v] {
			t.Errorf("key collision for distinct inputs: %s", v)
		}
		seen[v] = true
	}
}

func TestColourCacheBatchEviction(t *testing.T) {
	c := NewColourCache(100)

	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("character/c%03d|dark", i), colour.RGB{R: uint8(i)})
	}
	if c.Len() != 100 {
		t.Fatalf("cache has %d entries, want 100", c.Len())
	}

	// One insert past capacity drops the oldest 20 in a single pass.
	c.Put("character/c100|dark", colour.RGB{R: 200})

	if got := c.Len(); got != 81 {
		t.Errorf("cache has %d entries after batch eviction, want 81", got)
	}

	stats := c.Stats()
	if stats.Evictions != 20 {
		t.Errorf("evictions = %d, want 20", stats.Evictions)
	}

	for i := 0; i < 20; i++ {
		if _, ok := c.Get(fmt.Sprintf("character/c%03d|dark", i)); ok {
			t.Errorf("entry %d survived batch eviction", i)
		}
	}
	for i := 20; i < 100; i++ {
		if _, ok := c.Get(fmt.Sprintf("character/c%03d|dark", i)); !ok {
			t.Errorf("entry %d evicted, want only the oldest 20 gone", i)
		}
	}
}

func TestColourCacheInvalidateEntity(t *testing.T) {
	c := NewColourCache(100)

	dark := colour.EnhanceOptions{}
	boost := colour.EnhanceOptions{BoostVibrancy: true}

	c.Put(ColourKey("character", "alice", colour.ThemeDark, dark), colour.RGB{R: 1})
	c.Put(ColourKey("character", "alice", colour.ThemeLight, boost), colour.RGB{R: 2})
	c.Put(ColourKey("character", "bob", colour.ThemeDark, dark), colour.RGB{R: 3})
	c.Put(ColourKey("persona", "alice", colour.ThemeDark, dark), colour.RGB{R: 4})

	removed := c.InvalidateEntity("character", "alice")
	if removed != 2 {
		t.Errorf("removed %d entries, want 2", removed)
	}

	if _, ok := c.Get(ColourKey("character", "alice", colour.ThemeDark, dark)); ok {
		t.Error("invalidated entry still present")
	}
	if _, ok := c.Get(ColourKey("character", "bob", colour.ThemeDark, dark)); !ok {
		t.Error("bob's entry lost when invalidating alice")
	}
	if _, ok := c.Get(ColourKey("persona", "alice", colour.ThemeDark, dark)); !ok {
		t.Error("persona entry lost when invalidating the character kind")
	}
}

func TestColourCacheInvalidateKind(t *testing.T) {
	c := NewColourCache(100)
	opts := colour.EnhanceOptions{}

	c.Put(ColourKey("persona", "alice", colour.ThemeDark, opts), colour.RGB{R: 1})
	c.Put(ColourKey("persona", "bob", colour.ThemeDark, opts), colour.RGB{R: 2})
	c.Put(ColourKey("character", "carol", colour.ThemeDark, opts), colour.RGB{R: 3})

	removed := c.InvalidateKind("persona")
	if removed != 2 {
		t.Errorf("removed %d entries, want 2", removed)
	}
	if _, ok := c.Get(ColourKey("character", "carol", colour.ThemeDark, opts)); !ok {
		t.Error("character entry lost when invalidating personas")
	}
}

func TestColourCacheEntityPrefixIsNotIDPrefix(t *testing.T) {
	// "alice" must not sweep up "alice2".
	c := NewColourCache(100)
	opts := colour.EnhanceOptions{}

	c.Put(ColourKey("character", "alice", colour.ThemeDark, opts), colour.RGB{R: 1})
	c.Put(ColourKey("character", "alice2", colour.ThemeDark, opts), colour.RGB{R: 2})

	if removed := c.InvalidateEntity("character", "alice"); removed != 1 {
		t.Errorf("removed %d entries, want 1", removed)
	}
	if _, ok := c.Get(ColourKey("character", "alice2", colour.ThemeDark, opts)); !ok {
		t.Error("alice2 swept up by alice's invalidation")
	}
}

func TestColourCacheSmallCapacityEvictsAtLeastOne(t *testing.T) {
	c := NewColourCache(3)

	c.Put("k/1|d", colour.RGB{})
	c.Put("k/2|d", colour.RGB{})
	c.Put("k/3|d", colour.RGB{})
	c.Put("k/4|d", colour.RGB{})

	if c.Len() > 3 {
		t.Errorf("cache has %d entries, capacity is 3", c.Len())
	}
	if _, ok := c.Get("k/1|d"); ok {
		t.Error("oldest entry survived eviction")
	}
}
