package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/avatint/internal/avatar"
	"github.com/jmylchreest/avatint/internal/colour"
	imageutil "github.com/jmylchreest/avatint/internal/image"
	"github.com/jmylchreest/avatint/internal/watch"
)

// newWatchCmd builds the watch command: observe a directory of avatars
// and print re-extracted colours as files change.
func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		showStats bool
		enhance   enhanceFlags
	)

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Watch an avatar directory and re-extract on change",
		Long: `Watch a directory of avatar images. When a file is added or modified,
its cached extraction result is invalidated, the colour is re-derived
and printed. Removed files are dropped from the cache.

Runs until interrupted.

Examples:
  avatint watch ~/avatars
  avatint watch --stats --theme light ./avatars`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, args[0], showStats, &enhance)
		},
	}

	cmd.Flags().BoolVar(&showStats, "stats", false, "print cache statistics on each change")
	enhance.register(cmd)

	return cmd
}

func runWatch(cmd *cobra.Command, opts *globalOptions, dir string, showStats bool, enhance *enhanceFlags) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}

	enhanceOpts, err := enhance.options()
	if err != nil {
		return err
	}

	logger := opts.logger(cmd)
	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	watcher, err := watch.New(dir, cfg.Debounce(), logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Watch(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	theme := cfg.ParsedTheme()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "watching %s (%s theme)\n", dir, theme)

	// Prime the cache with whatever is already there.
	if files, err := imageutil.ScanDirectoryForImages(dir); err == nil {
		for _, path := range files {
			printColour(cmd, opts, svc, path, theme, enhanceOpts)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events():
			if !ok {
				return nil
			}

			svc.InvalidateAvatar(ev.Path)
			svc.InvalidateEntity(avatar.Entity{Kind: "file", ID: ev.Path})
			if ev.Op == watch.OpRemoved {
				fmt.Fprintf(out, "%-40s removed\n", ev.Path)
				continue
			}

			printColour(cmd, opts, svc, ev.Path, theme, enhanceOpts)
			if showStats {
				stats := svc.ColourStats()
				fmt.Fprintf(out, "cache: %d entries, %d hits, %d misses, %d evictions\n",
					stats.Entries, stats.Hits, stats.Misses, stats.Evictions)
			}
		}
	}
}

// printColour derives and prints the display colour for one avatar,
// logging failures without stopping the watch loop.
func printColour(cmd *cobra.Command, opts *globalOptions, svc *avatar.Service, path string, theme colour.Theme, enhanceOpts colour.EnhanceOptions) {
	entity := avatar.Entity{Kind: "file", ID: path}
	rgb, err := svc.DisplayColour(cmd.Context(), entity, imageutil.NewFileSource(path), theme, enhanceOpts)
	if err != nil {
		opts.logger(cmd).Warn("extraction failed", "path", path, "error", err)
		return
	}

	out := cmd.OutOrStdout()
	if rgb == nil {
		fmt.Fprintf(out, "%-40s no usable colour\n", path)
		return
	}

	if isTerminal(out) {
		fmt.Fprintf(out, "%-40s %s\n", path, colour.FormatColourWithPreview(*rgb, 6))
	} else {
		fmt.Fprintf(out, "%-40s %s\n", path, rgb.Hex())
	}
}
