package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/avatint/internal/colour"
)

// newContrastCmd builds the contrast command: the pure enhancement
// transform applied to a user-supplied colour.
func newContrastCmd(opts *globalOptions) *cobra.Command {
	var (
		format  string
		preview bool
		enhance enhanceFlags
	)

	cmd := &cobra.Command{
		Use:   "contrast <hex-colour>",
		Short: "Correct a colour for contrast against a theme background",
		Long: `Apply the contrast correction to a colour without extracting anything.

The colour is accepted as three or six hex digits with an optional
leading "#". Useful for previewing what an override colour will look
like after theme correction.

Examples:
  avatint contrast "#1a2b3c"
  avatint contrast --theme light --boost 9cf
  avatint contrast --hue -30 --lightness 10 "#cc2244"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContrast(cmd, opts, args[0], format, preview, &enhance)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "hex", "output format (hex, rgb, json)")
	cmd.Flags().BoolVar(&preview, "preview", false, "show a colour preview block (TTY only)")
	enhance.register(cmd)

	return cmd
}

func runContrast(cmd *cobra.Command, opts *globalOptions, hex, format string, preview bool, enhance *enhanceFlags) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}

	// The validation boundary for user-supplied colours: malformed
	// input is rejected here, nothing downstream sees it.
	rgb, err := colour.ParseHex(hex)
	if err != nil {
		return err
	}

	enhanceOpts, err := enhance.options()
	if err != nil {
		return err
	}

	theme := cfg.ParsedTheme()
	out := colour.BetterContrast(rgb, theme, enhanceOpts)

	if opts.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s -> %s (%s theme)\n", rgb.Hex(), out.Hex(), theme)
	}

	return writeColour(cmd, out, theme, "contrast", format, preview)
}
