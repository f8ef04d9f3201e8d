// Package config provides configuration loading for avatint.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional TOML file, AVATINT_* environment variables, and command-line
// flags applied by the CLI layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jmylchreest/avatint/internal/colour"
)

// Config is the complete avatint configuration.
type Config struct {
	// Theme is the background the colour will be displayed on:
	// "dark" or "light".
	Theme string `toml:"theme"`

	Extract ExtractConfig `toml:"extract"`
	Cache   CacheConfig   `toml:"cache"`
	Watch   WatchConfig   `toml:"watch"`
}

// ExtractConfig tunes the extraction pipeline.
type ExtractConfig struct {
	// MaxDimension caps the longer image side before extraction.
	MaxDimension int `toml:"max_dimension"`

	// MaxColours is the quantised palette size of the primary extractor.
	MaxColours int `toml:"max_colours"`

	// FallbackColours is the flat palette size of the fallback extractor.
	FallbackColours int `toml:"fallback_colours"`

	// DefaultColour is the hex colour used when no usable colour can be
	// derived from an avatar.
	DefaultColour string `toml:"default_colour"`
}

// CacheConfig sizes the in-memory caches.
type CacheConfig struct {
	// SwatchEntries is the extraction-result cache capacity.
	SwatchEntries int `toml:"swatch_entries"`

	// ColourEntries is the final-colour cache capacity.
	ColourEntries int `toml:"colour_entries"`
}

// WatchConfig tunes the avatar directory watcher.
type WatchConfig struct {
	// DebounceMillis is how long a file must stay quiet before its
	// change is reported.
	DebounceMillis int `toml:"debounce_millis"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Theme: "dark",
		Extract: ExtractConfig{
			MaxDimension:    1024,
			MaxColours:      64,
			FallbackColours: 12,
			DefaultColour:   "#787878",
		},
		Cache: CacheConfig{
			SwatchEntries: 50,
			ColourEntries: 100,
		},
		Watch: WatchConfig{
			DebounceMillis: 500,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return filepath.Join(dir, "avatint", "config.toml"), nil
}

// Load reads the configuration from path, layering it over the
// defaults and then applying environment overrides. An empty path uses
// the default location; a missing file at the default location is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err != nil {
			// No config dir available; run on defaults and environment.
			applyEnv(&cfg)
			return cfg, cfg.Validate()
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path) // #nosec G304 - User-specified config path, intended to be read
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Optional file absent; keep defaults.
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides settings from AVATINT_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("AVATINT_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("AVATINT_DEFAULT_COLOUR"); v != "" {
		cfg.Extract.DefaultColour = v
	}
	if v, ok := envInt("AVATINT_MAX_DIMENSION"); ok {
		cfg.Extract.MaxDimension = v
	}
	if v, ok := envInt("AVATINT_SWATCH_CACHE_ENTRIES"); ok {
		cfg.Cache.SwatchEntries = v
	}
	if v, ok := envInt("AVATINT_COLOUR_CACHE_ENTRIES"); ok {
		cfg.Cache.ColourEntries = v
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if _, err := colour.ParseTheme(c.Theme); err != nil {
		return fmt.Errorf("invalid theme: %w", err)
	}
	if c.Extract.MaxDimension < 16 {
		return fmt.Errorf("max dimension %d too small (minimum 16)", c.Extract.MaxDimension)
	}
	if !colour.IsValidHex(c.Extract.DefaultColour) {
		return fmt.Errorf("invalid default colour %q", c.Extract.DefaultColour)
	}
	if c.Cache.SwatchEntries < 1 {
		return fmt.Errorf("swatch cache entries must be at least 1, got %d", c.Cache.SwatchEntries)
	}
	if c.Cache.ColourEntries < 1 {
		return fmt.Errorf("colour cache entries must be at least 1, got %d", c.Cache.ColourEntries)
	}
	if c.Watch.DebounceMillis < 0 {
		return fmt.Errorf("watch debounce cannot be negative, got %d", c.Watch.DebounceMillis)
	}
	return nil
}

// ParsedTheme returns the theme as a colour.Theme.
func (c Config) ParsedTheme() colour.Theme {
	theme, err := colour.ParseTheme(c.Theme)
	if err != nil {
		return colour.ThemeDark
	}
	return theme
}

// Debounce returns the watcher debounce as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMillis) * time.Millisecond
}
