package colour

import (
	"errors"
	"fmt"
	"image"
)

// ErrNoColours is returned when an extractor finds no usable pixels,
// for example a fully transparent image or an empty fallback palette.
var ErrNoColours = errors.New("no colours extracted")

// Extractor produces a categorised swatch set from a decoded image.
type Extractor interface {
	// Extract derives swatches from the image. The returned set may be
	// missing categories; an error means the attempt produced nothing.
	Extract(img image.Image) (SwatchSet, error)
}

// Algorithm represents a swatch extraction algorithm.
type Algorithm string

const (
	// AlgorithmMedianCut is the primary extractor: median cut
	// quantisation scored into categories with observed populations.
	AlgorithmMedianCut Algorithm = "mediancut"

	// AlgorithmProminent is the fallback extractor: a flat k-means
	// palette classified into categories with nominal populations.
	AlgorithmProminent Algorithm = "prominent"
)

// ValidAlgorithms returns the list of supported algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmMedianCut,
		AlgorithmProminent,
	}
}

// IsValidAlgorithm checks if the given algorithm name is supported.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// ExtractorConfig holds tuning parameters shared by the extraction
// algorithms.
type ExtractorConfig struct {
	// MaxColours is the quantised palette size the primary extractor
	// scores categories from.
	MaxColours int

	// FallbackColours is the flat palette size requested from the
	// fallback extractor.
	FallbackColours int

	// QuantizationBits is the number of significant bits kept per
	// channel when binning pixels.
	QuantizationBits int

	// AlphaThreshold excludes pixels with alpha at or below this value.
	AlphaThreshold uint8
}

// DefaultExtractorConfig returns the default extraction configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxColours:       64,
		FallbackColours:  12,
		QuantizationBits: 5,
		AlphaThreshold:   16,
	}
}

// Validate validates the extractor configuration.
func (c ExtractorConfig) Validate() error {
	if c.MaxColours < 2 || c.MaxColours > 256 {
		return fmt.Errorf("max colours must be between 2 and 256, got %d", c.MaxColours)
	}
	if c.FallbackColours < 1 || c.FallbackColours > 64 {
		return fmt.Errorf("fallback colours must be between 1 and 64, got %d", c.FallbackColours)
	}
	if c.QuantizationBits < 1 || c.QuantizationBits > 8 {
		return fmt.Errorf("quantization bits must be between 1 and 8, got %d", c.QuantizationBits)
	}
	return nil
}

// NewExtractor creates a new Extractor based on the specified algorithm.
// Returns an error if the algorithm is not recognised.
func NewExtractor(alg Algorithm, cfg ExtractorConfig) (Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extractor config: %w", err)
	}

	switch alg {
	case AlgorithmMedianCut:
		return NewMedianCut(cfg), nil
	case AlgorithmProminent:
		return NewProminent(cfg), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}
