package colour

import "math"

// HSL represents a colour in HSL space with an alpha channel.
// Hue is in degrees [0, 360), saturation, lightness and alpha are
// fractions in [0, 1]. This convention is used throughout the package.
type HSL struct {
	H float64
	S float64
	L float64
	A float64
}

// RGBToHSL converts an opaque RGB colour to HSL, alpha set to 1.
func RGBToHSL(rgb RGB) HSL {
	return RGBAToHSL(RGBToRGBA(rgb))
}

// RGBAToHSL converts an RGBA colour to HSL, preserving alpha.
// Achromatic colours map to hue 0 and saturation 0.
func RGBAToHSL(c RGBA) HSL {
	r := float64(c.R) / 255.0
	g := float64(c.G) / 255.0
	b := float64(c.B) / 255.0

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal

	hsl := HSL{A: c.AlphaFloat()}

	// Lightness.
	hsl.L = (maxVal + minVal) / 2.0

	if delta == 0 {
		// Achromatic.
		return hsl
	}

	// Saturation.
	if hsl.L < 0.5 {
		hsl.S = delta / (maxVal + minVal)
	} else {
		hsl.S = delta / (2.0 - maxVal - minVal)
	}

	// Hue.
	var h float64
	switch maxVal {
	case r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	case b:
		h = (r-g)/delta + 4
	}
	hsl.H = h * 60

	return hsl
}

// RGB converts the HSL colour back to opaque RGB, discarding alpha.
func (hsl HSL) RGB() RGB {
	return hsl.RGBA().Opaque()
}

// RGBA converts the HSL colour back to RGBA, preserving alpha.
func (hsl HSL) RGBA() RGBA {
	a := channel(hsl.A)

	if hsl.S == 0 {
		// Achromatic (grey).
		v := channel(hsl.L)
		return RGBA{R: v, G: v, B: v, A: a}
	}

	var q float64
	if hsl.L < 0.5 {
		q = hsl.L * (1 + hsl.S)
	} else {
		q = hsl.L + hsl.S - hsl.L*hsl.S
	}
	p := 2*hsl.L - q

	return RGBA{
		R: channel(hueToRGB(p, q, hsl.H+120)),
		G: channel(hueToRGB(p, q, hsl.H)),
		B: channel(hueToRGB(p, q, hsl.H-120)),
		A: a,
	}
}

// HSLToRGB converts hue (0-360), saturation (0-1) and lightness (0-1)
// to an opaque RGB colour.
func HSLToRGB(h, s, l float64) RGB {
	return HSL{H: h, S: s, L: l, A: 1}.RGB()
}

// hueToRGB is a helper for HSL to RGB conversion.
func hueToRGB(p, q, t float64) float64 {
	// Normalize t to 0-360 range.
	for t < 0 {
		t += 360
	}
	for t >= 360 {
		t -= 360
	}

	if t < 60 {
		return p + (q-p)*t/60
	}
	if t < 180 {
		return q
	}
	if t < 240 {
		return p + (q-p)*(240-t)/60
	}
	return p
}

// channel converts a fraction in [0, 1] to a rounded 8-bit channel value.
func channel(v float64) uint8 {
	return uint8(clampFloat(math.Round(v*255), 0, 255))
}

// wrapHue normalises a hue in degrees to [0, 360).
func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
