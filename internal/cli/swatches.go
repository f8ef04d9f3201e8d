package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/avatint/internal/colour"
	imageutil "github.com/jmylchreest/avatint/internal/image"
)

// newSwatchesCmd builds the swatches command: the full categorised
// swatch set for an image, before selection and enhancement.
func newSwatchesCmd(opts *globalOptions) *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "swatches <image>",
		Short: "Show the categorised swatch set for an avatar",
		Long: `Show every swatch category extracted from an avatar image, with its
population and whether it passes the text quality gate.

The contrast column is the WCAG contrast ratio against the configured
theme's background (black for dark, white for light).

Examples:
  avatint swatches avatar.png
  avatint swatches --preview --theme light avatar.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSwatches(cmd, opts, args[0], preview)
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "show colour preview blocks (TTY only)")

	return cmd
}

func runSwatches(cmd *cobra.Command, opts *globalOptions, imagePath string, preview bool) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}

	if err := imageutil.ValidateImagePath(imagePath); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	svc, err := newService(cfg, opts.logger(cmd))
	if err != nil {
		return err
	}

	set, err := svc.Swatches(cmd.Context(), imageutil.FromPath(imagePath))
	if err != nil {
		return err
	}
	if len(set) == 0 {
		return fmt.Errorf("no swatches extracted from %s", imagePath)
	}

	theme := cfg.ParsedTheme()
	background := colour.RGB{} // dark theme: black
	if theme == colour.ThemeLight {
		background = colour.RGB{R: 255, G: 255, B: 255}
	}

	showPreview := preview && isTerminal(cmd.OutOrStdout())

	headers := []string{"CATEGORY", "HEX", "RGB", "POPULATION", "CONTRAST", "USABLE"}
	if showPreview {
		headers = append([]string{""}, headers...)
	}
	table := NewTable(headers)

	for _, c := range colour.Categories() {
		sw, ok := set[c]
		if !ok {
			continue
		}

		ratio := colour.ContrastRatio(colour.RGBToColor(sw.Colour), colour.RGBToColor(background))
		row := []string{
			c.String(),
			sw.Colour.Hex(),
			sw.Colour.String(),
			strconv.Itoa(sw.Population),
			fmt.Sprintf("%.2f", ratio),
			strconv.FormatBool(colour.Usable(sw.Colour)),
		}
		if showPreview {
			row = append([]string{colour.ColourPreview(sw.Colour, 6)}, row...)
		}
		table.AddRow(row)
	}

	fmt.Fprint(cmd.OutOrStdout(), table.Render())
	return nil
}
