package main

import (
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/minbar"
	"github.com/aretw0/minbar/pkg/auth"
	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/server"
)

var (
	serveAddr  string
	serveGrace time.Duration
	serveWatch []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Serve the manager, auth and commit history endpoints until interrupted.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		addr := cfg.HTTP.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := minbar.New(ctx, cfg, minbar.WithLogger(slog.Default()))
		if err != nil {
			return err
		}

		accounts, err := auth.Open(auth.Config{
			DBPath:   cfg.Auth.DBPath,
			Secret:   []byte(cfg.Auth.JWTSecret),
			TokenTTL: cfg.GetTokenTTL(),
			Logger:   slog.Default(),
		})
		if err != nil {
			return err
		}
		defer accounts.Close()

		srv := server.New(server.Config{
			Actor:          app.Service,
			Accounts:       accounts,
			Commits:        app.Store,
			Owner:          cfg.Store.Owner,
			AdminOrigin:    cfg.HTTP.AdminOrigin,
			RequestTimeout: cfg.GetRequestTimeout(),
			StatusCodes:    cfg.HTTP.StatusCodes,
			Logger:         slog.Default(),
		})

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Serve(gctx, ln, serveGrace)
		})
		if w, ok := app.Store.(core.Watchable); ok {
			for _, slug := range serveWatch {
				events, err := w.Watch(gctx, app.Site(slug))
				if err != nil {
					stop()
					_ = g.Wait()
					return err
				}
				g.Go(func() error {
					for e := range events {
						slog.Info("site changed", "site", slug, "event", e.String())
					}
					return nil
				})
			}
		} else if len(serveWatch) > 0 {
			slog.Warn("store does not support watching", "backend", cfg.Store.Backend)
		}
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().DurationVar(&serveGrace, "grace", 10*time.Second, "Shutdown grace period")
	serveCmd.Flags().StringSliceVar(&serveWatch, "watch", nil, "Log changes to these site slugs (fs backend)")
}
