package colour

import (
	"fmt"
	"image"

	"github.com/EdlinOrg/prominentcolor"
)

// ProminentExtractor is the fallback extraction algorithm. It asks
// prominentcolor's k-means for a flat palette and classifies each
// centroid into a category. Cluster sizes are not carried over; every
// swatch gets a nominal population of 1, so fallback swatches never
// outweigh primary ones in averaging.
type ProminentExtractor struct {
	cfg ExtractorConfig
}

// NewProminent creates a prominent colour extractor with the given config.
func NewProminent(cfg ExtractorConfig) *ProminentExtractor {
	return &ProminentExtractor{cfg: cfg}
}

// Extract derives a categorised swatch set from a flat k-means palette.
// The extraction first runs with the library's background masks; if that
// yields nothing (for example a plain white avatar the masks swallow
// whole) it retries unmasked. An empty palette after both attempts is an
// error for this attempt only.
func (e *ProminentExtractor) Extract(img image.Image) (SwatchSet, error) {
	centroids, err := prominentcolor.KmeansWithAll(
		e.cfg.FallbackColours,
		img,
		prominentcolor.ArgumentNoCropping,
		prominentcolor.DefaultSize,
		prominentcolor.GetDefaultMasks(),
	)
	if err != nil || len(centroids) == 0 {
		// Retry without masks before giving up.
		centroids, err = prominentcolor.KmeansWithAll(
			e.cfg.FallbackColours,
			img,
			prominentcolor.ArgumentNoCropping,
			prominentcolor.DefaultSize,
			nil,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("prominent colour extraction: %w", err)
	}

	palette := make([]RGB, 0, len(centroids))
	for _, c := range centroids {
		palette = append(palette, RGB{
			R: uint8(min(c.Color.R, 255)),
			G: uint8(min(c.Color.G, 255)),
			B: uint8(min(c.Color.B, 255)),
		})
	}

	set := classifyPalette(palette)
	if len(set) == 0 {
		return nil, ErrNoColours
	}
	return set, nil
}

// classifyPalette buckets a flat palette into a swatch set. The palette
// is assumed ordered by descending dominance, so the first colour seen
// for a category wins and later candidates are dropped.
func classifyPalette(palette []RGB) SwatchSet {
	set := make(SwatchSet)
	for _, rgb := range palette {
		c := Classify(rgb)
		if _, ok := set[c]; ok {
			continue
		}
		set[c] = Swatch{Colour: rgb, Population: 1}
	}
	return set
}
