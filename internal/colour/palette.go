// Package colour provides the colour model, swatch categorisation and
// palette extraction used to derive avatar accent colours.
package colour

import (
	"fmt"
	"image/color"
	"strings"
)

// RGB represents an opaque colour in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a zero-padded hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// RGBA represents a colour with an alpha channel.
type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Hex returns the colour as a hex string without the alpha channel.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HexAlpha returns the colour as a hex string including the alpha channel.
func (c RGBA) HexAlpha() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// AlphaFloat returns the alpha channel as a fraction in [0, 1].
func (c RGBA) AlphaFloat() float64 {
	return float64(c.A) / 255.0
}

// Opaque returns the colour with the alpha channel dropped.
func (c RGBA) Opaque() RGB {
	return RGB{R: c.R, G: c.G, B: c.B}
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255].
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// RGBToColor converts an RGB value to a color.Color (RGBA).
func RGBToColor(rgb RGB) color.Color {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// RGBToRGBA converts an RGB struct to an RGBA struct with full opacity.
func RGBToRGBA(rgb RGB) RGBA {
	return RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// IsValidHex reports whether s is a well-formed hex colour string.
// Accepts three or six hex digits with an optional leading "#".
func IsValidHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !isHexDigit(r) {
			return false
		}
	}
	return true
}

// ParseHex parses a hex colour string into an RGB value.
// Accepts the same forms as IsValidHex; three-digit strings are expanded
// by doubling each digit ("#1af" means "#11aaff").
func ParseHex(s string) (RGB, error) {
	if !IsValidHex(s) {
		return RGB{}, fmt.Errorf("invalid hex colour %q", s)
	}

	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.ToLower(h), "%02x%02x%02x", &r, &g, &b); err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return RGB{R: r, G: g, B: b}, nil
}

func isHexDigit(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	}
	return false
}
