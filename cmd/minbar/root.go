package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/minbar"
)

var (
	verbose    bool
	configPath string
	backend    string

	cfg *minbar.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minbar",
	Short: "Natural-language content manager for mosque websites",
	Long: `Minbar turns operator instructions into edits on a mosque site repository.
Each instruction is planned by a language model, merged with the caller's
context and dispatched to exactly one tool.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			if wd, err := os.Getwd(); err == nil {
				if found, err := minbar.FindConfig(wd); err == nil {
					path = found
				}
			}
		}

		loaded, err := minbar.LoadConfig(path)
		if err != nil {
			return err
		}
		if backend != "" {
			loaded.Store.Backend = backend
		}
		cfg = loaded

		slog.SetDefault(newLogger(cfg.Logging.Level, cfg.Logging.Format))
		if path != "" {
			slog.Debug("config loaded", "path", path)
		}
		return nil
	},
}

func newLogger(level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
	}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: nearest minbar.yaml)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Override the store backend (github, fs, memory)")
}
