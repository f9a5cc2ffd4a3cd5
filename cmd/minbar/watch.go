package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/minbar"
	"github.com/aretw0/minbar/pkg/adapters/lifecycle"
	"github.com/aretw0/minbar/pkg/core"
)

var watchPatterns []string

var watchCmd = &cobra.Command{
	Use:   "watch [slug]",
	Short: "Stream file changes of a site",
	Long:  `Print change events of a local site checkout until interrupted. Requires the fs backend.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := minbar.OpenStore(ctx, cfg,
			minbar.WithLogger(slog.Default()),
			minbar.WithWatcherErrorHandler(func(err error) {
				slog.Error("watcher error", "error", err)
			}),
		)
		if err != nil {
			fatal("Error opening store", err)
		}
		w, ok := store.(core.Watchable)
		if !ok {
			fatal("Error watching site", fmt.Errorf("backend %q cannot be watched", cfg.Store.Backend))
		}

		events, err := w.Watch(ctx, core.SiteRef{Owner: cfg.Store.Owner, Name: args[0]})
		if err != nil {
			fatal("Error watching site", err)
		}

		src := lifecycle.NewSource(events, watchPatterns...)
		if err := src.Start(ctx); err != nil {
			fatal("Error starting source", err)
		}
		for e := range src.Events() {
			fmt.Println(e.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringSliceVar(&watchPatterns, "pattern", nil, "Only report paths matching these globs (e.g. docs/**/*.json)")
}
