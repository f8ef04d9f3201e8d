package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/avatint/internal/colour"
	imageutil "github.com/jmylchreest/avatint/internal/image"
)

// newExtractCmd builds the extract command: image in, one display
// colour out.
func newExtractCmd(opts *globalOptions) *cobra.Command {
	var (
		format  string
		preview bool
		raw     bool
		enhance enhanceFlags
	)

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract the display colour for an avatar",
		Long: `Extract the single best display colour from an avatar image.

The image is downscaled, its palette extracted and categorised, and the
best readable category selected. Unless --raw is given, the colour is
then corrected for contrast against the configured theme.

Supported image formats: JPEG, PNG, GIF, WebP. The image may be a local
file or an HTTPS URL.

Examples:
  # Colour for a dark background (default theme)
  avatint extract avatar.png

  # Colour for a light background, with a vibrancy boost
  avatint extract --theme light --boost avatar.png

  # Fine-grained adjustments, JSON output
  avatint extract --hue 15 --saturation 10 --format json avatar.png

  # Remote avatar
  avatint extract https://example.com/avatar.webp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, opts, args[0], format, preview, raw, &enhance)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "hex", "output format (hex, rgb, json)")
	cmd.Flags().BoolVar(&preview, "preview", false, "show a colour preview block (TTY only)")
	cmd.Flags().BoolVar(&raw, "raw", false, "skip contrast enhancement")
	enhance.register(cmd)

	return cmd
}

// extractResult is the JSON output shape of the extract command.
type extractResult struct {
	Hex    string     `json:"hex"`
	RGB    colour.RGB `json:"rgb"`
	Theme  string     `json:"theme"`
	Source string     `json:"source"`
}

func runExtract(cmd *cobra.Command, opts *globalOptions, imagePath, format string, preview, raw bool, enhance *enhanceFlags) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}

	enhanceOpts, err := enhance.options()
	if err != nil {
		return err
	}

	if err := imageutil.ValidateImagePath(imagePath); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	logger := opts.logger(cmd)
	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	theme := cfg.ParsedTheme()
	src := imageutil.FromPath(imagePath)

	rgb, err := svc.SmartColour(cmd.Context(), src)
	if err != nil {
		return err
	}

	source := "extracted"
	var out colour.RGB
	switch {
	case rgb == nil:
		// No usable colour in the image: fall back to the configured
		// default, which is already contrast-safe by choice.
		logger.Info("no usable colour extracted, using default", "image", imagePath)
		out, err = colour.ParseHex(cfg.Extract.DefaultColour)
		if err != nil {
			return err
		}
		source = "default"
	case raw:
		out = *rgb
	default:
		out = colour.BetterContrast(*rgb, theme, enhanceOpts)
	}

	return writeColour(cmd, out, theme, source, format, preview)
}

// writeColour prints a colour in the requested format.
func writeColour(cmd *cobra.Command, rgb colour.RGB, theme colour.Theme, source, format string, preview bool) error {
	w := cmd.OutOrStdout()

	if preview && isTerminal(cmd.OutOrStdout()) {
		fmt.Fprintln(w, colour.FormatColourWithPreview(rgb, 8))
		if format == "hex" {
			return nil
		}
	}

	switch format {
	case "hex":
		fmt.Fprintln(w, rgb.Hex())
	case "rgb":
		fmt.Fprintln(w, rgb.String())
	case "json":
		data, err := json.MarshalIndent(extractResult{
			Hex:    rgb.Hex(),
			RGB:    rgb,
			Theme:  theme.String(),
			Source: source,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintln(w, string(data))
	default:
		return fmt.Errorf("unsupported format: %s (supported: hex, rgb, json)", format)
	}

	return nil
}
