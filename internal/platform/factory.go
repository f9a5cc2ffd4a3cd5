package platform

import (
	"context"

	"github.com/aretw0/minbar/internal/config"
	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/tools"
)

// App is a fully wired minbar instance.
type App struct {
	Config   *config.Config
	Store    core.ContentStore
	Planner  core.Planner
	Registry *tools.Registry
	Service  *core.Service
}

// New wires store, planner, dispatcher and pipeline from cfg.
//
//	app, err := platform.New(ctx, cfg, platform.WithBackend("memory"))
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	o := apply(opts)

	store, err := openStore(ctx, cfg, o)
	if err != nil {
		return nil, err
	}
	p, err := openPlanner(ctx, cfg, o)
	if err != nil {
		return nil, err
	}

	registry := tools.NewDefaultRegistry(tools.Env{
		Store: store,
		Owner: cfg.Store.Owner,
		Template: core.TemplateRef{
			Owner: cfg.Store.TemplateOwner,
			Repo:  cfg.Store.TemplateRepo,
		},
		AssetPatterns: cfg.Assets.Allowed,
		Logger:        o.logger,
		Now:           o.now,
	})

	svcOpts := []core.ServiceOption{core.WithPlanTimeout(cfg.GetPlannerTimeout())}
	if o.logger != nil {
		svcOpts = append(svcOpts, core.WithServiceLogger(o.logger))
	}

	return &App{
		Config:   cfg,
		Store:    store,
		Planner:  p,
		Registry: registry,
		Service:  core.NewService(p, registry, svcOpts...),
	}, nil
}

// Site resolves a slug against the configured owner.
func (a *App) Site(slug string) core.SiteRef {
	return core.SiteRef{Owner: a.Config.Store.Owner, Name: slug}
}
