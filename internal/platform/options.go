package platform

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/minbar/pkg/core"
)

// options holds the internal configuration for wiring a minbar instance.
type options struct {
	store        core.ContentStore
	planner      core.Planner
	logger       *slog.Logger
	backend      string
	forceTemp    bool
	devSafety    *bool
	gitless      *bool
	errorHandler func(error)
	httpClient   *http.Client
	now          func() time.Time
}

// Option defines a functional option for configuring minbar.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithStore injects a content store (e.g. a mock). The configured backend is
// skipped.
func WithStore(store core.ContentStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithPlanner injects a planner. The configured provider is skipped.
func WithPlanner(p core.Planner) Option {
	return func(o *options) {
		o.planner = p
	}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBackend overrides store.backend by name ("github", "fs", "memory").
func WithBackend(name string) Option {
	return func(o *options) {
		o.backend = name
	}
}

// WithVersioning enables or disables git for the fs backend.
// By default, versioning is enabled when git is installed.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		gitless := !enabled
		o.gitless = &gitless
	}
}

// WithForceTemp forces the fs root into a temporary directory.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run`.
// By default (true), the fs root is moved into a temporary directory so a
// development run never touches real sites.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = &enabled
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the
// fs watch loop.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithHTTPClient sets the HTTP client used by the GitHub store and planners.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithClock overrides the clock used for seeded timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
