package colour

import "fmt"

// Swatch is a single representative colour with the number of source
// pixels it stands for. Swatches are immutable once produced; extractors
// that cannot observe pixel counts use a nominal population of 1.
type Swatch struct {
	Colour     RGB
	Population int
}

// Category is one of the six saturation/lightness buckets a swatch can
// occupy. Categories are mutually exclusive and never stored on the
// swatch itself; they key the SwatchSet.
type Category int

// The six swatch categories, declared in selection priority order.
const (
	Vibrant Category = iota
	DarkVibrant
	LightVibrant
	Muted
	DarkMuted
	LightMuted
)

// Categories returns all categories in selection priority order.
func Categories() []Category {
	return []Category{Vibrant, DarkVibrant, LightVibrant, Muted, DarkMuted, LightMuted}
}

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Vibrant:
		return "Vibrant"
	case DarkVibrant:
		return "DarkVibrant"
	case LightVibrant:
		return "LightVibrant"
	case Muted:
		return "Muted"
	case DarkMuted:
		return "DarkMuted"
	case LightMuted:
		return "LightMuted"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// ParseCategory parses a category name. Matching is exact.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown swatch category %q", s)
}

// Classification thresholds, applied to HSL components scaled to
// percentages.
const (
	vibrantSaturationPct = 40
	darkLightnessPct     = 40
	lightLightnessPct    = 60
)

// Classify buckets a colour into one of the six categories using its HSL
// saturation and lightness. Saturation above 40% is vibrant, otherwise
// muted; lightness below 40% adds the Dark prefix and above 60% the
// Light prefix. The function is pure and total: every RGB triple maps to
// exactly one category.
func Classify(rgb RGB) Category {
	hsl := RGBToHSL(rgb)
	vibrant := hsl.S*100 > vibrantSaturationPct

	switch {
	case hsl.L*100 < darkLightnessPct:
		if vibrant {
			return DarkVibrant
		}
		return DarkMuted
	case hsl.L*100 > lightLightnessPct:
		if vibrant {
			return LightVibrant
		}
		return LightMuted
	default:
		if vibrant {
			return Vibrant
		}
		return Muted
	}
}

// SwatchSet maps each category to at most one swatch. Insertion order is
// irrelevant; a set with fewer than six entries is still valid.
type SwatchSet map[Category]Swatch

// Complete reports whether every category holds a swatch.
func (s SwatchSet) Complete() bool {
	return len(s.Missing()) == 0
}

// Missing returns the categories without a swatch, in priority order.
func (s SwatchSet) Missing() []Category {
	var missing []Category
	for _, c := range Categories() {
		if _, ok := s[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Merge combines the set with a fallback set and returns the result.
// Entries already present always win; fallback swatches only fill
// categories the receiver is missing. Fallback categories with no gap to
// fill are excluded.
func (s SwatchSet) Merge(fallback SwatchSet) SwatchSet {
	merged := make(SwatchSet, len(s)+len(fallback))
	for c, sw := range s {
		merged[c] = sw
	}
	for _, c := range Categories() {
		if _, ok := merged[c]; ok {
			continue
		}
		if sw, ok := fallback[c]; ok {
			merged[c] = sw
		}
	}
	return merged
}

// TotalPopulation returns the sum of all swatch populations.
func (s SwatchSet) TotalPopulation() int {
	total := 0
	for _, sw := range s {
		total += sw.Population
	}
	return total
}
