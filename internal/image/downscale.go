package image

import (
	"image"

	"golang.org/x/image/draw"
)

// DefaultMaxDimension caps the longer side of an image before palette
// extraction. Extraction cost scales with pixel count, so anything
// larger is scaled down first.
const DefaultMaxDimension = 1024

// Downscale returns the image scaled so its longer side is at most
// maxDimension, aspect ratio preserved and dimensions rounded to whole
// pixels. Images already within bounds are returned unchanged. A
// non-positive maxDimension uses DefaultMaxDimension.
func Downscale(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= maxDimension && height <= maxDimension {
		return img
	}

	var newWidth, newHeight int
	if width >= height {
		newWidth = maxDimension
		newHeight = scaleDimension(height, width, maxDimension)
	} else {
		newHeight = maxDimension
		newWidth = scaleDimension(width, height, maxDimension)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// scaleDimension scales the shorter side proportionally, rounding to
// whole pixels with a floor of 1.
func scaleDimension(side, longSide, target int) int {
	scaled := (side*target + longSide/2) / longSide
	if scaled < 1 {
		return 1
	}
	return scaled
}
