package minbar

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/minbar/internal/config"
	"github.com/aretw0/minbar/internal/platform"
	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/typed"
)

// --- Types ---

// Config is the full minbar configuration.
type Config = config.Config

// App is a fully wired minbar instance.
type App = platform.App

// Request is one operator instruction.
type Request = core.Request

// Outcome is the response envelope of one pipeline run.
type Outcome = core.Outcome

// TypedDocument is a site JSON document decoded into T.
type TypedDocument[T any] = typed.Document[T]

// TypedRepository gives struct access to site JSON documents.
type TypedRepository[T any] = typed.Repository[T]

// --- Configuration ---

// Option defines a functional option for configuring minbar.
type Option = platform.Option

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML config file and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// FindConfig looks upwards from startDir for a minbar.yaml.
func FindConfig(startDir string) (string, error) {
	return platform.FindConfig(startDir)
}

// WithStore injects a content store.
func WithStore(store core.ContentStore) Option {
	return platform.WithStore(store)
}

// WithPlanner injects a planner.
func WithPlanner(p core.Planner) Option {
	return platform.WithPlanner(p)
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithBackend overrides the configured store backend by name.
func WithBackend(name string) Option {
	return platform.WithBackend(name)
}

// WithVersioning enables or disables git for the fs backend.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the fs root into a temporary directory.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the `go run` sandbox for the fs backend.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithWatcherErrorHandler registers a callback for fs watch loop errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithHTTPClient sets the HTTP client used for outbound calls.
func WithHTTPClient(c *http.Client) Option {
	return platform.WithHTTPClient(c)
}

// WithClock overrides the clock used for seeded timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// --- Factory ---

// New wires a minbar instance from cfg.
func New(ctx context.Context, cfg *Config, opts ...Option) (*App, error) {
	return platform.New(ctx, cfg, opts...)
}

// OpenStore builds only the configured content store.
func OpenStore(ctx context.Context, cfg *Config, opts ...Option) (core.ContentStore, error) {
	return platform.OpenStore(ctx, cfg, opts...)
}

// NewTypedRepository wraps a store for struct access to JSON documents.
func NewTypedRepository[T any](store core.ContentStore) *typed.Repository[T] {
	return typed.NewRepository[T](store)
}

// --- Utils ---

// Slugify derives a site slug from a display name.
func Slugify(name string) string {
	return core.Slugify(name)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// --- Semantic Commits ---

const (
	CommitTypeFeat  = core.CommitTypeFeat
	CommitTypeFix   = core.CommitTypeFix
	CommitTypeChore = core.CommitTypeChore
)

// FormatChangeReason builds a Conventional Commit message.
func FormatChangeReason(ctype, scope, subject, body string) string {
	return core.FormatChangeReason(ctype, scope, subject, body)
}
