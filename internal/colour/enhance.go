package colour

import (
	"fmt"
	"strings"
)

// Theme is the background context a colour will be displayed against.
type Theme int

const (
	// ThemeDark indicates a dark background.
	ThemeDark Theme = iota
	// ThemeLight indicates a light background.
	ThemeLight
)

// String returns the theme name in lowercase.
func (t Theme) String() string {
	if t == ThemeLight {
		return "light"
	}
	return "dark"
}

// ParseTheme parses a theme name, case-insensitively.
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(s) {
	case "dark":
		return ThemeDark, nil
	case "light":
		return ThemeLight, nil
	default:
		return 0, fmt.Errorf("invalid theme %q (must be dark or light)", s)
	}
}

// EnhanceOptions carries the user adjustments applied after the
// theme-dependent contrast correction. When BoostVibrancy is set the
// numeric knobs are ignored; the two shapes come from different
// generations of caller settings.
type EnhanceOptions struct {
	// BoostVibrancy adds a flat saturation boost instead of the numeric
	// adjustments below.
	BoostVibrancy bool

	// HueAdjust rotates the hue in degrees, [-180, 180].
	HueAdjust float64

	// SatAdjust shifts saturation in percentage points, [-100, 100].
	SatAdjust float64

	// LumAdjust shifts lightness in percentage points, [-100, 100].
	LumAdjust float64
}

// Validate checks the adjustment knobs are within their ranges.
func (o EnhanceOptions) Validate() error {
	if o.HueAdjust < -180 || o.HueAdjust > 180 {
		return fmt.Errorf("hue adjustment %g out of range [-180, 180]", o.HueAdjust)
	}
	if o.SatAdjust < -100 || o.SatAdjust > 100 {
		return fmt.Errorf("saturation adjustment %g out of range [-100, 100]", o.SatAdjust)
	}
	if o.LumAdjust < -100 || o.LumAdjust > 100 {
		return fmt.Errorf("lightness adjustment %g out of range [-100, 100]", o.LumAdjust)
	}
	return nil
}

// Saturation and lightness correction constants for BetterContrast.
const (
	saturationFloorBelow = 0.4
	saturationFloorBoost = 0.3
	saturationFloorCap   = 0.8
	vibrancyBoost        = 0.35
)

// BetterContrast corrects a colour for legibility against the given
// theme's background, then applies the caller's adjustments. The
// transform is pure and deterministic; caching its output is the
// caller's concern.
//
// The colour is corrected in HSL space. Washed-out colours get a
// saturation floor, then the lightness is pulled into a band readable on
// the theme background, then the EnhanceOptions are applied.
func BetterContrast(rgb RGB, theme Theme, opts EnhanceOptions) RGB {
	hsl := RGBToHSL(rgb)

	// Saturation floor for washed-out colours.
	if hsl.S < saturationFloorBelow {
		hsl.S = clampFloat(hsl.S+saturationFloorBoost, 0, saturationFloorCap)
	}

	hsl.L = correctLightness(hsl.L, theme)

	if opts.BoostVibrancy {
		hsl.S = clampFloat(hsl.S+vibrancyBoost, 0, 1)
	} else {
		hsl.H = wrapHue(hsl.H + opts.HueAdjust)
		hsl.S = clampFloat(hsl.S+opts.SatAdjust/100, 0, 1)
		hsl.L = clampFloat(hsl.L+opts.LumAdjust/100, 0, 1)
	}

	return hsl.RGB()
}

// correctLightness pulls a lightness value into the readable band for
// the theme background.
func correctLightness(l float64, theme Theme) float64 {
	if theme == ThemeDark {
		// Dark backgrounds need colours lifted out of the shadows, but
		// near-white pulled back so they still read as colour.
		switch {
		case l < 0.5:
			return 0.65
		case l < 0.7:
			return 0.7
		case l > 0.85:
			return 0.8
		}
		return l
	}

	// Light backgrounds need colours darkened, with a floor so black-ish
	// input keeps some lift.
	switch {
	case l > 0.6:
		l = 0.45
	case l > 0.4:
		l = 0.4
	}
	if l < 0.2 {
		return 0.25
	}
	return l
}
