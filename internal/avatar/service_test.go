package avatar

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmylchreest/avatint/internal/colour"
)

// fakeSource serves a pre-built image and counts loads. An optional
// delay widens the in-flight window for the dedup test.
type fakeSource struct {
	id    string
	img   image.Image
	err   error
	delay time.Duration
	loads atomic.Int32
}

func (f *fakeSource) Identity() string { return f.id }

func (f *fakeSource) Load(_ context.Context) (image.Image, error) {
	f.loads.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

// countingExtractor wraps an extractor and counts invocations.
type countingExtractor struct {
	inner colour.Extractor
	calls atomic.Int32
}

func (c *countingExtractor) Extract(img image.Image) (colour.SwatchSet, error) {
	c.calls.Add(1)
	return c.inner.Extract(img)
}

// failingExtractor always errors.
type failingExtractor struct{}

func (failingExtractor) Extract(image.Image) (colour.SwatchSet, error) {
	return nil, errors.New("extractor broke")
}

// staticExtractor returns a fixed swatch set.
type staticExtractor struct {
	set colour.SwatchSet
}

func (s staticExtractor) Extract(image.Image) (colour.SwatchSet, error) {
	if len(s.set) == 0 {
		return nil, colour.ErrNoColours
	}
	return s.set, nil
}

// solidImage builds a solid-colour NRGBA image.
func solidImage(c color.NRGBA, size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	svc, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return svc
}

func TestSmartColourRedAvatar(t *testing.T) {
	// A saturated mid-bright red avatar must select the Vibrant
	// category with a colour close to that red.
	svc := newTestService(t, DefaultConfig())
	src := &fakeSource{id: "red", img: solidImage(color.NRGBA{R: 220, G: 30, B: 30, A: 255}, 64)}

	rgb, err := svc.SmartColour(context.Background(), src)
	if err != nil {
		t.Fatalf("SmartColour failed: %v", err)
	}
	if rgb == nil {
		t.Fatal("SmartColour returned no colour for a saturated red avatar")
	}
	if rgb.R < 150 || rgb.G > 90 || rgb.B > 90 {
		t.Errorf("colour %v is not close to red", *rgb)
	}

	// Post-enhancement lightness must land in the dark theme band.
	enhanced := colour.BetterContrast(*rgb, colour.ThemeDark, colour.EnhanceOptions{})
	if hsl := colour.RGBToHSL(enhanced); hsl.L < 0.6 || hsl.L > 0.85 {
		t.Errorf("enhanced lightness = %g, want within the dark theme band", hsl.L)
	}
}

func TestSmartColourCachesByIdentity(t *testing.T) {
	svc := newTestService(t, DefaultConfig())
	src := &fakeSource{id: "cached", img: solidImage(color.NRGBA{R: 30, G: 160, B: 220, A: 255}, 32)}

	if _, err := svc.SmartColour(context.Background(), src); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := svc.SmartColour(context.Background(), src); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if got := src.loads.Load(); got != 1 {
		t.Errorf("image loaded %d times, want 1 (second call should hit the cache)", got)
	}
}

func TestSwatchesDeduplicatesConcurrentWork(t *testing.T) {
	cfg := DefaultConfig()
	primary := &countingExtractor{inner: colour.NewMedianCut(cfg.Extractor)}
	cfg.Primary = primary

	svc := newTestService(t, cfg)
	src := &fakeSource{
		id:    "shared",
		img:   solidImage(color.NRGBA{R: 220, G: 30, B: 30, A: 255}, 32),
		delay: 50 * time.Millisecond,
	}

	const callers = 8
	results := make([]colour.SwatchSet, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			set, err := svc.Swatches(context.Background(), src)
			if err != nil {
				t.Errorf("caller %d failed: %v", i, err)
				return
			}
			results[i] = set
		}(i)
	}
	wg.Wait()

	if got := primary.calls.Load(); got != 1 {
		t.Errorf("primary extractor ran %d times for one identity, want 1", got)
	}
	for i := 1; i < callers; i++ {
		if results[i][colour.Vibrant] != results[0][colour.Vibrant] {
			t.Errorf("caller %d got a different result", i)
		}
	}
}

func TestSmartColourLoadFailure(t *testing.T) {
	svc := newTestService(t, DefaultConfig())
	src := &fakeSource{id: "broken", err: errors.New("decode failed")}

	if _, err := svc.SmartColour(context.Background(), src); err == nil {
		t.Error("SmartColour swallowed a load failure, want error")
	}
}

func TestSmartColourExtractionFailuresAreSwallowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Primary = failingExtractor{}
	cfg.Fallback = failingExtractor{}

	svc := newTestService(t, cfg)
	src := &fakeSource{id: "hopeless", img: solidImage(color.NRGBA{R: 10, G: 10, B: 10, A: 255}, 16)}

	rgb, err := svc.SmartColour(context.Background(), src)
	if err != nil {
		t.Fatalf("extraction failure escaped as an error: %v", err)
	}
	if rgb != nil {
		t.Errorf("got colour %v from two failing extractors, want nil", *rgb)
	}
}

func TestFallbackFillsMissingCategories(t *testing.T) {
	primarySet := colour.SwatchSet{
		colour.Vibrant: {Colour: colour.RGB{R: 200, G: 40, B: 40}, Population: 500},
	}
	fallbackSet := colour.SwatchSet{
		colour.Vibrant:     {Colour: colour.RGB{R: 1, G: 2, B: 3}, Population: 1},
		colour.DarkVibrant: {Colour: colour.RGB{R: 90, G: 10, B: 10}, Population: 1},
	}

	cfg := DefaultConfig()
	cfg.Primary = staticExtractor{set: primarySet}
	cfg.Fallback = staticExtractor{set: fallbackSet}

	svc := newTestService(t, cfg)
	src := &fakeSource{id: "merge", img: solidImage(color.NRGBA{R: 50, G: 50, B: 50, A: 255}, 16)}

	set, err := svc.Swatches(context.Background(), src)
	if err != nil {
		t.Fatalf("Swatches failed: %v", err)
	}

	if got := set[colour.Vibrant]; got != primarySet[colour.Vibrant] {
		t.Errorf("Vibrant = %+v, fallback overwrote the primary swatch", got)
	}
	if got := set[colour.DarkVibrant]; got != fallbackSet[colour.DarkVibrant] {
		t.Errorf("DarkVibrant = %+v, want the fallback fill", got)
	}
}

func TestDisplayColourCachesPerSettings(t *testing.T) {
	svc := newTestService(t, DefaultConfig())
	src := &fakeSource{id: "entity", img: solidImage(color.NRGBA{R: 220, G: 40, B: 40, A: 255}, 32)}
	entity := Entity{Kind: "character", ID: "alice"}

	dark, err := svc.DisplayColour(context.Background(), entity, src, colour.ThemeDark, colour.EnhanceOptions{})
	if err != nil || dark == nil {
		t.Fatalf("DisplayColour(dark) = %v, %v", dark, err)
	}

	light, err := svc.DisplayColour(context.Background(), entity, src, colour.ThemeLight, colour.EnhanceOptions{})
	if err != nil || light == nil {
		t.Fatalf("DisplayColour(light) = %v, %v", light, err)
	}
	if *dark == *light {
		t.Error("dark and light themes yielded the same cached colour")
	}

	// Second dark call is a cache hit, not a new extraction.
	before := svc.ColourStats().Hits
	again, err := svc.DisplayColour(context.Background(), entity, src, colour.ThemeDark, colour.EnhanceOptions{})
	if err != nil || again == nil {
		t.Fatalf("repeat DisplayColour = %v, %v", again, err)
	}
	if *again != *dark {
		t.Error("repeat call returned a different colour")
	}
	if svc.ColourStats().Hits != before+1 {
		t.Error("repeat call did not hit the colour cache")
	}
}

func TestDisplayColourInvalidation(t *testing.T) {
	svc := newTestService(t, DefaultConfig())
	src := &fakeSource{id: "inv", img: solidImage(color.NRGBA{R: 220, G: 40, B: 40, A: 255}, 32)}
	entity := Entity{Kind: "persona", ID: "p1"}

	if _, err := svc.DisplayColour(context.Background(), entity, src, colour.ThemeDark, colour.EnhanceOptions{}); err != nil {
		t.Fatalf("DisplayColour failed: %v", err)
	}

	if removed := svc.InvalidateEntity(entity); removed != 1 {
		t.Errorf("InvalidateEntity removed %d entries, want 1", removed)
	}
	if removed := svc.InvalidateEntity(entity); removed != 0 {
		t.Errorf("second invalidation removed %d entries, want 0", removed)
	}
}

func TestDisplayColourRejectsInvalidOptions(t *testing.T) {
	svc := newTestService(t, DefaultConfig())
	src := &fakeSource{id: "opts", img: solidImage(color.NRGBA{R: 220, G: 40, B: 40, A: 255}, 16)}

	_, err := svc.DisplayColour(context.Background(), Entity{Kind: "character", ID: "x"}, src,
		colour.ThemeDark, colour.EnhanceOptions{HueAdjust: 999})
	if err == nil {
		t.Error("out-of-range adjustments accepted")
	}
}

// encodePNG keeps the png import honest for the end-to-end decode path.
func TestSmartColourDecodesEncodedImage(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(color.NRGBA{R: 200, G: 60, B: 30, A: 255}, 24)); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	svc := newTestService(t, DefaultConfig())
	rgb, err := svc.SmartColour(context.Background(), &fakeSource{id: "png", img: img})
	if err != nil {
		t.Fatalf("SmartColour failed: %v", err)
	}
	if rgb == nil {
		t.Fatal("SmartColour returned no colour")
	}
}
