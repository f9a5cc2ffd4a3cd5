// Package server exposes the pipeline, operator accounts and commit history
// over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aretw0/minbar/pkg/core"
)

// Actor runs one instruction through the pipeline.
type Actor interface {
	Act(ctx context.Context, req core.Request) core.Outcome
}

// Accounts registers and authenticates operators.
type Accounts interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Verify(token string) (string, error)
}

// CommitLister reads site history.
type CommitLister interface {
	ListCommits(ctx context.Context, site core.SiteRef, limit int) ([]core.Commit, error)
}

// DefaultCommitLimit is the page size of the commits endpoint.
const DefaultCommitLimit = 20

// Config wires the server to its collaborators.
type Config struct {
	Actor          Actor
	Accounts       Accounts
	Commits        CommitLister
	Owner          string
	AdminOrigin    string
	RequestTimeout time.Duration
	StatusCodes    bool // map error kinds to HTTP statuses on /manager/act
	Logger         *slog.Logger
}

// Server is the HTTP surface.
type Server struct {
	cfg    Config
	logger *slog.Logger
	router chi.Router
}

// New creates a Server and builds its routes.
func New(cfg Config) *Server {
	s := &Server{cfg: cfg, logger: cfg.Logger}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.cfg.AdminOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{s.cfg.AdminOrigin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealthz)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/manager/act", s.handleAct)
		r.Get("/repos/{slug}/commits", s.handleCommits)
	})
	return r
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the given grace period.
func (s *Server) Serve(ctx context.Context, ln net.Listener, grace time.Duration) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("http server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	<-errCh
	s.logger.Info("http server stopped")
	return err
}
