package platform

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/minbar/internal/config"
	"github.com/aretw0/minbar/pkg/adapters/fs"
	"github.com/aretw0/minbar/pkg/adapters/github"
	"github.com/aretw0/minbar/pkg/adapters/memory"
	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/git"
	"github.com/aretw0/minbar/pkg/planner"
)

// OpenStore builds the content store selected by cfg.
func OpenStore(ctx context.Context, cfg *config.Config, opts ...Option) (core.ContentStore, error) {
	return openStore(ctx, cfg, apply(opts))
}

func openStore(ctx context.Context, cfg *config.Config, o *options) (core.ContentStore, error) {
	if o.store != nil {
		return o.store, nil
	}

	backend := cfg.Store.Backend
	if o.backend != "" {
		backend = o.backend
	}

	switch backend {
	case "github":
		client := o.httpClient
		if client == nil {
			client = &http.Client{Timeout: cfg.GetGitHubTimeout()}
		}
		store, err := github.New(github.Config{
			Token:      cfg.GitHub.Token,
			Branch:     cfg.Store.Branch,
			BaseURL:    cfg.GitHub.BaseURL,
			HTTPClient: client,
			Logger:     o.logger,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "fs":
		repo, err := initFS(ctx, cfg, o)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "memory":
		tmpl := core.TemplateRef{Owner: cfg.Store.TemplateOwner, Repo: cfg.Store.TemplateRepo}
		return memory.New(memory.WithLogger(o.logger), memory.WithTemplate(tmpl, map[string][]byte{})), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

// initFS handles path resolution and git detection for the fs backend.
func initFS(ctx context.Context, cfg *config.Config, o *options) (*fs.Repository, error) {
	devSafety := cfg.DevSafetyEnabled()
	if o.devSafety != nil {
		devSafety = *o.devSafety
	}
	useTemp := o.forceTemp || (IsDevRun() && devSafety)
	root := ResolveRoot(cfg.FS.Root, useTemp)
	templates := cfg.FS.Templates
	if templates != "" && useTemp {
		templates = ResolveRoot(templates, true)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	if useTemp {
		logger.Warn("running in SAFE MODE (dev sandbox)", "original_root", cfg.FS.Root, "resolved_root", root)
	}

	gitless := cfg.FS.Gitless
	if o.gitless != nil {
		gitless = *o.gitless
	} else if !gitless && !git.IsInstalled() {
		gitless = true
		logger.Debug("auto-detected gitless mode", "reason", "git not installed")
	}

	repo := fs.NewRepository(fs.Config{
		Root:         root,
		Templates:    templates,
		Branch:       cfg.Store.Branch,
		Gitless:      gitless,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
	})
	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// OpenPlanner builds the planner selected by cfg.Planner.Provider.
func OpenPlanner(ctx context.Context, cfg *config.Config, opts ...Option) (core.Planner, error) {
	return openPlanner(ctx, cfg, apply(opts))
}

func openPlanner(ctx context.Context, cfg *config.Config, o *options) (core.Planner, error) {
	if o.planner != nil {
		return o.planner, nil
	}

	switch cfg.Planner.Provider {
	case "openai":
		return planner.NewOpenAI(planner.OpenAIConfig{
			APIKey:     cfg.Planner.OpenAIKey,
			BaseURL:    cfg.Planner.BaseURL,
			Model:      cfg.Planner.Model,
			MaxTokens:  cfg.Planner.MaxTokens,
			JSONMode:   cfg.Planner.JSONMode,
			HTTPClient: o.httpClient,
			Logger:     o.logger,
		}), nil
	case "gemini":
		p, err := planner.NewGemini(ctx, planner.GeminiConfig{
			APIKey:     cfg.Planner.GeminiKey,
			Model:      cfg.Planner.Model,
			MaxTokens:  cfg.Planner.MaxTokens,
			BaseURL:    cfg.Planner.BaseURL,
			HTTPClient: o.httpClient,
			Logger:     o.logger,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown planner provider: %s", cfg.Planner.Provider)
	}
}
