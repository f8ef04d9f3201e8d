package colour

import "math"

// Quality thresholds for a colour that has to carry text.
const (
	// minTextLuma and maxTextLuma bound the perceived brightness range a
	// usable accent colour may occupy.
	minTextLuma = 0.15
	maxTextLuma = 0.95

	// minTextSaturation rejects colours too grey to read as an accent.
	minTextSaturation = 0.2
)

// Usable reports whether a colour passes the quality gate for display as
// an accent: perceived luma within [0.15, 0.95] and saturation of at
// least 0.2.
func Usable(rgb RGB) bool {
	l := perceivedLuma(rgb)
	if l < minTextLuma || l > maxTextLuma {
		return false
	}
	return hsvSaturation(rgb) >= minTextSaturation
}

// SelectColour picks the best display colour from a swatch set. It walks
// the categories in priority order and returns the first swatch that
// passes the quality gate. If no swatch passes, it returns the
// population-weighted average of all present swatches without quality
// filtering. The second return value is false only for an empty set.
func SelectColour(set SwatchSet) (RGB, bool) {
	if len(set) == 0 {
		return RGB{}, false
	}

	for _, c := range Categories() {
		sw, ok := set[c]
		if !ok {
			continue
		}
		if Usable(sw.Colour) {
			return sw.Colour, true
		}
	}

	return weightedAverage(set), true
}

// weightedAverage blends all swatches in the set, each weighted by its
// population. A zero total population is treated as 1.
func weightedAverage(set SwatchSet) RGB {
	var r, g, b float64
	total := set.TotalPopulation()
	if total <= 0 {
		total = 1
	}

	for _, sw := range set {
		w := float64(sw.Population)
		r += float64(sw.Colour.R) * w
		g += float64(sw.Colour.G) * w
		b += float64(sw.Colour.B) * w
	}

	t := float64(total)
	return RGB{
		R: uint8(clampFloat(math.Round(r/t), 0, 255)),
		G: uint8(clampFloat(math.Round(g/t), 0, 255)),
		B: uint8(clampFloat(math.Round(b/t), 0, 255)),
	}
}

// perceivedLuma computes Rec. 601 luma normalised to [0, 1]. Unlike the
// WCAG relative luminance in Luminance, this is a cheap linear weighting
// suited to threshold checks.
func perceivedLuma(rgb RGB) float64 {
	return (0.299*float64(rgb.R) + 0.587*float64(rgb.G) + 0.114*float64(rgb.B)) / 255.0
}

// hsvSaturation computes HSV-style saturation, (max-min)/max over the
// normalised channels. Black has saturation 0.
func hsvSaturation(rgb RGB) float64 {
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	if maxVal == 0 {
		return 0
	}
	return (maxVal - minVal) / maxVal
}
