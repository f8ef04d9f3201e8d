// Test avatar generator for exercising colour extraction by hand.
package main

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

const size = 256

func main() {
	write("testdata/avatar_solid.png", solid(color.NRGBA{R: 200, G: 40, B: 40, A: 255}))
	write("testdata/avatar_gradient.png", gradient())
	write("testdata/avatar_ring.png", ring())
	write("testdata/avatar_grey.png", solid(color.NRGBA{R: 120, G: 120, B: 120, A: 255}))

	println("Test avatars created under testdata/")
}

// solid fills the whole canvas with one colour.
func solid(c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// gradient sweeps the channels across both axes, giving the extractor a
// wide spread of candidate colours.
func gradient() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x),
				G: uint8(y),
				B: uint8(255 - x),
				A: 255,
			})
		}
	}
	return img
}

// ring draws a vibrant circle on a transparent background, the shape of
// a typical round avatar crop.
func ring() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	centre := float64(size) / 2
	radius := centre * 0.9

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-centre, float64(y)-centre)
			if d > radius {
				continue // transparent corner
			}
			if d > radius*0.7 {
				img.SetNRGBA(x, y, color.NRGBA{R: 40, G: 90, B: 200, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{R: 240, G: 200, B: 60, A: 255})
			}
		}
	}
	return img
}

func write(path string, img image.Image) {
	file, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		panic(err)
	}
}
