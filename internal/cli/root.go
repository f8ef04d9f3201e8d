// Package cli provides the command-line interface for avatint.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/avatint/internal/avatar"
	"github.com/jmylchreest/avatint/internal/colour"
	"github.com/jmylchreest/avatint/internal/config"
	"github.com/jmylchreest/avatint/internal/version"
)

// globalOptions carries the persistent flags shared by all commands.
type globalOptions struct {
	verbose    bool
	quiet      bool
	theme      string
	configPath string
}

// NewRootCmd builds the avatint command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "avatint",
		Short: "Extract display colours from avatar images",
		Long: `Avatint derives a single readable accent colour from an avatar image.

It extracts a categorised palette, filters out colours unsuitable for
text, and corrects the winner for contrast against a dark or light
background.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVarP(&opts.theme, "theme", "t", "", "background theme (dark, light)")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: user config dir)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newExtractCmd(opts))
	rootCmd.AddCommand(newSwatchesCmd(opts))
	rootCmd.AddCommand(newContrastCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))

	return rootCmd
}

// newVersionCmd builds the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// logger builds an hclog logger from the verbosity flags, writing to
// the command's error stream.
func (o *globalOptions) logger(cmd *cobra.Command) hclog.Logger {
	level := hclog.Info
	if o.verbose {
		level = hclog.Debug
	}
	if o.quiet {
		level = hclog.Error
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "avatint",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})
}

// load resolves the effective configuration: file and environment
// first, then the --theme flag on top.
func (o *globalOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("theme") {
		cfg.Theme = o.theme
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}

	return cfg, nil
}

// newService builds an avatar colour service from the configuration.
func newService(cfg config.Config, logger hclog.Logger) (*avatar.Service, error) {
	svcCfg := avatar.DefaultConfig()
	svcCfg.MaxDimension = cfg.Extract.MaxDimension
	svcCfg.SwatchCacheEntries = cfg.Cache.SwatchEntries
	svcCfg.ColourCacheEntries = cfg.Cache.ColourEntries
	svcCfg.Extractor.MaxColours = cfg.Extract.MaxColours
	svcCfg.Extractor.FallbackColours = cfg.Extract.FallbackColours

	return avatar.New(svcCfg, logger)
}

// enhanceFlags holds the per-command contrast adjustment flags.
type enhanceFlags struct {
	boost     bool
	hueAdjust float64
	satAdjust float64
	lumAdjust float64
}

// register adds the adjustment flags to a command.
func (e *enhanceFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&e.boost, "boost", false, "apply a flat vibrancy boost instead of the numeric adjustments")
	cmd.Flags().Float64Var(&e.hueAdjust, "hue", 0, "hue rotation in degrees (-180 to 180)")
	cmd.Flags().Float64Var(&e.satAdjust, "saturation", 0, "saturation shift in percentage points (-100 to 100)")
	cmd.Flags().Float64Var(&e.lumAdjust, "lightness", 0, "lightness shift in percentage points (-100 to 100)")
}

// options converts the flags to validated EnhanceOptions.
func (e *enhanceFlags) options() (colour.EnhanceOptions, error) {
	opts := colour.EnhanceOptions{
		BoostVibrancy: e.boost,
		HueAdjust:     e.hueAdjust,
		SatAdjust:     e.satAdjust,
		LumAdjust:     e.lumAdjust,
	}
	if err := opts.Validate(); err != nil {
		return colour.EnhanceOptions{}, err
	}
	return opts, nil
}

// isTerminal reports whether the writer is an interactive terminal,
// deciding whether ANSI colour previews are worth emitting.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
