package colour

import (
	"image"
	"image/draw"
	"math"
	"sort"
)

// MedianCutExtractor is the primary extraction algorithm. It bins the
// image into a quantised histogram, splits the colour space with median
// cut, and scores the resulting palette into the six swatch categories.
// Populations are observed pixel counts, so the swatches it produces
// carry real dominance information.
type MedianCutExtractor struct {
	cfg ExtractorConfig
}

// NewMedianCut creates a median cut extractor with the given config.
func NewMedianCut(cfg ExtractorConfig) *MedianCutExtractor {
	return &MedianCutExtractor{cfg: cfg}
}

// Extract derives a categorised swatch set from the image. Categories
// with no qualifying candidate are left out of the set; a fully
// transparent image yields ErrNoColours.
func (e *MedianCutExtractor) Extract(img image.Image) (SwatchSet, error) {
	bins, err := e.buildBins(toNRGBA(img))
	if err != nil {
		return nil, err
	}

	boxes := buildBoxes(bins, e.cfg.MaxColours)
	swatches := boxesToSwatches(boxes)
	if len(swatches) == 0 {
		return nil, ErrNoColours
	}

	return scoreCategories(swatches), nil
}

// colourBin is one occupied cell of the quantised histogram. rq/gq/bq
// are the quantised channel coordinates, r/g/b the bucket-centre colour.
type colourBin struct {
	rq    uint8
	gq    uint8
	bq    uint8
	r     uint8
	g     uint8
	b     uint8
	count int
}

// colourBox is a region of quantised colour space holding one or more
// bins, tracked with its channel extents for median cut splitting.
type colourBox struct {
	bins       []colourBin
	population int
	rMin, rMax uint8
	gMin, gMax uint8
	bMin, bMax uint8
	volume     int
}

// toNRGBA normalises any decoded image to NRGBA for direct pixel access.
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// buildBins walks every pixel and accumulates a quantised histogram,
// skipping pixels at or below the alpha threshold.
func (e *MedianCutExtractor) buildBins(img *image.NRGBA) ([]colourBin, error) {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	if width <= 0 || height <= 0 {
		return nil, ErrNoColours
	}

	bits := e.cfg.QuantizationBits
	channelMask := (1 << bits) - 1
	channelShift := 8 - bits
	indexShift := bits * 2
	histogram := make([]int, 1<<(bits*3))

	total := 0
	for y := 0; y < height; y++ {
		rowOffset := y * img.Stride
		for x := 0; x < width; x++ {
			offset := rowOffset + x*4
			r := img.Pix[offset]
			g := img.Pix[offset+1]
			b := img.Pix[offset+2]
			a := img.Pix[offset+3]

			if a <= e.cfg.AlphaThreshold {
				continue
			}

			rq := (int(r) >> channelShift) & channelMask
			gq := (int(g) >> channelShift) & channelMask
			bq := (int(b) >> channelShift) & channelMask
			histogram[(rq<<indexShift)|(gq<<bits)|bq]++
			total++
		}
	}

	if total == 0 {
		return nil, ErrNoColours
	}

	bins := make([]colourBin, 0, 256)
	for index, count := range histogram {
		if count == 0 {
			continue
		}
		rq := uint8((index >> indexShift) & channelMask)
		gq := uint8((index >> bits) & channelMask)
		bq := uint8(index & channelMask)
		bins = append(bins, colourBin{
			rq:    rq,
			gq:    gq,
			bq:    bq,
			r:     bucketCentre(rq, bits),
			g:     bucketCentre(gq, bits),
			b:     bucketCentre(bq, bits),
			count: count,
		})
	}

	return bins, nil
}

// bucketCentre maps a quantised channel value back to the centre of its
// 8-bit bucket.
func bucketCentre(value uint8, bits int) uint8 {
	bucketSize := 256 >> bits
	return uint8(clampInt(int(value)*bucketSize+bucketSize/2, 0, 255))
}

// buildBoxes repeatedly splits the box with the highest population and
// volume until targetCount boxes exist or nothing can be split further.
func buildBoxes(bins []colourBin, targetCount int) []colourBox {
	if len(bins) == 0 {
		return nil
	}

	boxes := []colourBox{newColourBox(bins)}
	for len(boxes) < targetCount {
		best := -1
		bestScore := 0.0
		for index, box := range boxes {
			if !box.canSplit() {
				continue
			}
			score := float64(box.population) * math.Log(float64(box.volume)+1)
			if best == -1 || score > bestScore {
				best = index
				bestScore = score
			}
		}
		if best == -1 {
			break
		}

		left, right, ok := splitBox(boxes[best])
		if !ok {
			break
		}
		boxes[best] = boxes[len(boxes)-1]
		boxes = boxes[:len(boxes)-1]
		boxes = append(boxes, left, right)
	}

	return boxes
}

func newColourBox(bins []colourBin) colourBox {
	box := colourBox{bins: bins}
	if len(bins) == 0 {
		return box
	}

	box.rMin, box.rMax = bins[0].rq, bins[0].rq
	box.gMin, box.gMax = bins[0].gq, bins[0].gq
	box.bMin, box.bMax = bins[0].bq, bins[0].bq

	for _, bin := range bins {
		box.population += bin.count
		if bin.rq < box.rMin {
			box.rMin = bin.rq
		}
		if bin.rq > box.rMax {
			box.rMax = bin.rq
		}
		if bin.gq < box.gMin {
			box.gMin = bin.gq
		}
		if bin.gq > box.gMax {
			box.gMax = bin.gq
		}
		if bin.bq < box.bMin {
			box.bMin = bin.bq
		}
		if bin.bq > box.bMax {
			box.bMax = bin.bq
		}
	}

	box.volume = int(box.rMax-box.rMin+1) * int(box.gMax-box.gMin+1) * int(box.bMax-box.bMin+1)
	return box
}

func (b colourBox) canSplit() bool {
	return len(b.bins) > 1 && (b.rMax > b.rMin || b.gMax > b.gMin || b.bMax > b.bMin)
}

// splitBox cuts a box along its longest axis at the population median.
func splitBox(box colourBox) (colourBox, colourBox, bool) {
	if !box.canSplit() {
		return colourBox{}, colourBox{}, false
	}

	axis := longestAxis(box)
	ordered := append([]colourBin(nil), box.bins...)
	sort.Slice(ordered, func(i, j int) bool {
		left := axisValue(ordered[i], axis)
		right := axisValue(ordered[j], axis)
		if left == right {
			return ordered[i].count > ordered[j].count
		}
		return left < right
	})

	target := box.population / 2
	cumulative := 0
	splitIndex := -1
	for index, bin := range ordered {
		cumulative += bin.count
		if cumulative >= target {
			splitIndex = index + 1
			break
		}
	}

	if splitIndex <= 0 || splitIndex >= len(ordered) {
		splitIndex = len(ordered) / 2
	}
	if splitIndex <= 0 || splitIndex >= len(ordered) {
		return colourBox{}, colourBox{}, false
	}

	left := newColourBox(append([]colourBin(nil), ordered[:splitIndex]...))
	right := newColourBox(append([]colourBin(nil), ordered[splitIndex:]...))
	return left, right, true
}

func longestAxis(box colourBox) int {
	rRange := box.rMax - box.rMin
	gRange := box.gMax - box.gMin
	bRange := box.bMax - box.bMin

	if rRange >= gRange && rRange >= bRange {
		return 0
	}
	if gRange >= rRange && gRange >= bRange {
		return 1
	}
	return 2
}

func axisValue(bin colourBin, axis int) uint8 {
	switch axis {
	case 0:
		return bin.rq
	case 1:
		return bin.gq
	default:
		return bin.bq
	}
}

// boxesToSwatches collapses each box into a population-averaged swatch.
func boxesToSwatches(boxes []colourBox) []Swatch {
	swatches := make([]Swatch, 0, len(boxes))
	for _, box := range boxes {
		if box.population <= 0 {
			continue
		}

		var rSum, gSum, bSum int
		for _, bin := range box.bins {
			rSum += int(bin.r) * bin.count
			gSum += int(bin.g) * bin.count
			bSum += int(bin.b) * bin.count
		}

		swatches = append(swatches, Swatch{
			Colour: RGB{
				R: uint8(rSum / box.population),
				G: uint8(gSum / box.population),
				B: uint8(bSum / box.population),
			},
			Population: box.population,
		})
	}

	sort.Slice(swatches, func(i, j int) bool {
		return swatches[i].Population > swatches[j].Population
	})
	return swatches
}

// categoryTarget describes the saturation and lightness region a
// category draws candidates from, with the ideal point scoring pulls
// towards.
type categoryTarget struct {
	minSat, targetSat, maxSat float64
	minLum, targetLum, maxLum float64
}

func targetFor(c Category) categoryTarget {
	const (
		targetDark   = 0.26
		maxDark      = 0.45
		minLight     = 0.55
		targetLight  = 0.74
		minNormal    = 0.3
		targetNormal = 0.5
		maxNormal    = 0.7

		minVibrantSat    = 0.35
		targetVibrantSat = 1.0
		targetMutedSat   = 0.3
		maxMutedSat      = 0.4
	)

	switch c {
	case Vibrant:
		return categoryTarget{minVibrantSat, targetVibrantSat, 1, minNormal, targetNormal, maxNormal}
	case LightVibrant:
		return categoryTarget{minVibrantSat, targetVibrantSat, 1, minLight, targetLight, 1}
	case DarkVibrant:
		return categoryTarget{minVibrantSat, targetVibrantSat, 1, 0, targetDark, maxDark}
	case Muted:
		return categoryTarget{0, targetMutedSat, maxMutedSat, minNormal, targetNormal, maxNormal}
	case LightMuted:
		return categoryTarget{0, targetMutedSat, maxMutedSat, minLight, targetLight, 1}
	default: // DarkMuted
		return categoryTarget{0, targetMutedSat, maxMutedSat, 0, targetDark, maxDark}
	}
}

// Scoring weights. Lightness dominates so each category lands in its
// band; population breaks ties towards dominant regions of the image.
const (
	weightSaturation = 3.0
	weightLightness  = 6.5
	weightPopulation = 0.5
)

// scoreCategories fills a swatch set by picking, for every category, the
// best-scoring quantised swatch inside that category's target region.
// A swatch serves at most one category.
func scoreCategories(swatches []Swatch) SwatchSet {
	maxPopulation := 0
	for _, sw := range swatches {
		if sw.Population > maxPopulation {
			maxPopulation = sw.Population
		}
	}
	if maxPopulation == 0 {
		maxPopulation = 1
	}

	set := make(SwatchSet)
	taken := make(map[int]bool, len(swatches))

	for _, c := range Categories() {
		target := targetFor(c)
		best := -1
		bestScore := 0.0

		for index, sw := range swatches {
			if taken[index] {
				continue
			}
			hsl := RGBToHSL(sw.Colour)
			if hsl.S < target.minSat || hsl.S > target.maxSat {
				continue
			}
			if hsl.L < target.minLum || hsl.L > target.maxLum {
				continue
			}

			score := weightSaturation*(1-math.Abs(hsl.S-target.targetSat)) +
				weightLightness*(1-math.Abs(hsl.L-target.targetLum)) +
				weightPopulation*(float64(sw.Population)/float64(maxPopulation))
			if best == -1 || score > bestScore {
				best = index
				bestScore = score
			}
		}

		if best >= 0 {
			taken[best] = true
			set[c] = swatches[best]
		}
	}

	return set
}
