// Package avatar derives display colours for avatar images. It wires
// the extraction pipeline together: load, downscale, primary extraction,
// fallback fill, caching, selection and contrast enhancement.
package avatar

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"

	"github.com/jmylchreest/avatint/internal/cache"
	"github.com/jmylchreest/avatint/internal/colour"
	imageutil "github.com/jmylchreest/avatint/internal/image"
)

// Entity identifies who an avatar belongs to in the display layer: a
// kind ("character", "persona") and a stable id within that kind.
type Entity struct {
	Kind string
	ID   string
}

// Config holds the service construction parameters.
type Config struct {
	// MaxDimension caps the longer image side before extraction.
	MaxDimension int

	// SwatchCacheEntries is the extraction-result cache capacity.
	SwatchCacheEntries int

	// ColourCacheEntries is the final-colour cache capacity.
	ColourCacheEntries int

	// Extractor tunes both extraction algorithms.
	Extractor colour.ExtractorConfig

	// Primary and Fallback override the built extractors; tests inject
	// fakes here. Nil selects median cut and prominent respectively.
	Primary  colour.Extractor
	Fallback colour.Extractor
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		MaxDimension:       imageutil.DefaultMaxDimension,
		SwatchCacheEntries: cache.DefaultSwatchEntries,
		ColourCacheEntries: cache.DefaultColourEntries,
		Extractor:          colour.DefaultExtractorConfig(),
	}
}

// Service derives and caches avatar colours. Concurrent requests for
// the same image identity share a single extraction.
type Service struct {
	logger   hclog.Logger
	primary  colour.Extractor
	fallback colour.Extractor

	swatches *cache.SwatchCache
	colours  *cache.ColourCache
	group    singleflight.Group

	maxDimension int
}

// New creates an avatar colour service.
func New(cfg Config, logger hclog.Logger) (*Service, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = imageutil.DefaultMaxDimension
	}
	if err := cfg.Extractor.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extractor config: %w", err)
	}

	primary := cfg.Primary
	if primary == nil {
		primary = colour.NewMedianCut(cfg.Extractor)
	}
	fallback := cfg.Fallback
	if fallback == nil {
		fallback = colour.NewProminent(cfg.Extractor)
	}

	return &Service{
		logger:       logger.Named("avatar"),
		primary:      primary,
		fallback:     fallback,
		swatches:     cache.NewSwatchCache(cfg.SwatchCacheEntries),
		colours:      cache.NewColourCache(cfg.ColourCacheEntries),
		maxDimension: cfg.MaxDimension,
	}, nil
}

// SmartColour returns the best display colour for an avatar, or nil
// when no usable colour exists. Extraction failures are logged and
// swallowed; a non-nil error means the image itself could not be loaded
// or decoded.
func (s *Service) SmartColour(ctx context.Context, src imageutil.Source) (*colour.RGB, error) {
	set, err := s.Swatches(ctx, src)
	if err != nil {
		return nil, err
	}

	rgb, ok := colour.SelectColour(set)
	if !ok {
		return nil, nil
	}
	return &rgb, nil
}

// Swatches returns the categorised swatch set for an avatar, from cache
// when possible. Concurrent calls for the same identity run one
// extraction and share its result.
func (s *Service) Swatches(ctx context.Context, src imageutil.Source) (colour.SwatchSet, error) {
	key := src.Identity()

	if set, ok := s.swatches.Get(key); ok {
		return set, nil
	}

	// The singleflight group is the in-flight registry: the first
	// caller for a key runs the extraction, later callers attach to it,
	// and the entry is gone once the call settles either way.
	v, err, shared := s.group.Do(key, func() (any, error) {
		set, err := s.extract(ctx, src)
		if err != nil {
			return nil, err
		}
		s.swatches.Put(key, set)
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("joined in-flight extraction", "key", key)
	}

	return v.(colour.SwatchSet), nil
}

// extract runs the full extraction pipeline for one image. Only a load
// or decode failure is an error; extractor failures degrade to a
// partial or empty swatch set.
func (s *Service) extract(ctx context.Context, src imageutil.Source) (colour.SwatchSet, error) {
	requestID := uuid.NewString()
	log := s.logger.With("request_id", requestID, "key", src.Identity())

	img, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load avatar: %w", err)
	}

	img = imageutil.Downscale(img, s.maxDimension)

	set, err := s.primary.Extract(img)
	if err != nil {
		log.Warn("primary extraction failed", "error", err)
		set = make(colour.SwatchSet)
	}

	if missing := set.Missing(); len(missing) > 0 {
		log.Debug("primary set incomplete, running fallback", "missing", len(missing))

		fb, err := s.fallback.Extract(img)
		if err != nil {
			// Local and silent: the partial primary set is still valid.
			log.Warn("fallback extraction failed", "error", err)
		} else {
			set = set.Merge(fb)
		}
	}

	log.Debug("extraction complete", "categories", len(set))
	return set, nil
}

// DisplayColour returns the contrast-corrected colour for an entity's
// avatar under the given theme and adjustments, cached per entity,
// theme and adjustment combination. A nil colour with nil error means
// the caller should use its configured default.
func (s *Service) DisplayColour(ctx context.Context, entity Entity, src imageutil.Source, theme colour.Theme, opts colour.EnhanceOptions) (*colour.RGB, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	key := cache.ColourKey(entity.Kind, entity.ID, theme, opts)
	if rgb, ok := s.colours.Get(key); ok {
		return &rgb, nil
	}

	raw, err := s.SmartColour(ctx, src)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		// Absence is not cached; a later avatar change may yield colour.
		return nil, nil
	}

	enhanced := colour.BetterContrast(*raw, theme, opts)
	s.colours.Put(key, enhanced)
	return &enhanced, nil
}

// InvalidateAvatar drops the extraction result for one image identity,
// typically because its file changed on disk.
func (s *Service) InvalidateAvatar(identity string) {
	s.swatches.Invalidate(identity)
}

// InvalidateEntity drops all cached display colours for one entity, for
// example after its override or enhancement settings changed.
func (s *Service) InvalidateEntity(entity Entity) int {
	return s.colours.InvalidateEntity(entity.Kind, entity.ID)
}

// InvalidateKind drops all cached display colours for one entity kind,
// for example when a kind-wide setting changes.
func (s *Service) InvalidateKind(kind string) int {
	return s.colours.InvalidateKind(kind)
}

// ColourStats returns the final-colour cache counters.
func (s *Service) ColourStats() cache.ColourStats {
	return s.colours.Stats()
}
