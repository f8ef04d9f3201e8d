package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
theme = "light"

[extract]
max_dimension = 512
default_colour = "#336699"

[cache]
swatch_entries = 25
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Theme != "light" {
		t.Errorf("theme = %q, want light", cfg.Theme)
	}
	if cfg.Extract.MaxDimension != 512 {
		t.Errorf("max dimension = %d, want 512", cfg.Extract.MaxDimension)
	}
	if cfg.Extract.DefaultColour != "#336699" {
		t.Errorf("default colour = %q, want #336699", cfg.Extract.DefaultColour)
	}
	if cfg.Cache.SwatchEntries != 25 {
		t.Errorf("swatch entries = %d, want 25", cfg.Cache.SwatchEntries)
	}
	// Unset keys keep their defaults.
	if cfg.Cache.ColourEntries != 100 {
		t.Errorf("colour entries = %d, want default 100", cfg.Cache.ColourEntries)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load accepted a missing explicit config path")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("theme = [broken"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AVATINT_THEME", "light")
	t.Setenv("AVATINT_MAX_DIMENSION", "256")
	t.Setenv("AVATINT_DEFAULT_COLOUR", "#abc")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`theme = "dark"`), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Theme != "light" {
		t.Errorf("theme = %q, environment should override the file", cfg.Theme)
	}
	if cfg.Extract.MaxDimension != 256 {
		t.Errorf("max dimension = %d, want env override 256", cfg.Extract.MaxDimension)
	}
	if cfg.Extract.DefaultColour != "#abc" {
		t.Errorf("default colour = %q, want env override #abc", cfg.Extract.DefaultColour)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad theme", func(c *Config) { c.Theme = "sepia" }},
		{"tiny dimension", func(c *Config) { c.Extract.MaxDimension = 4 }},
		{"bad default colour", func(c *Config) { c.Extract.DefaultColour = "red" }},
		{"zero swatch cache", func(c *Config) { c.Cache.SwatchEntries = 0 }},
		{"zero colour cache", func(c *Config) { c.Cache.ColourEntries = 0 }},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMillis = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}
