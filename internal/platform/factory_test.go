package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/minbar/internal/config"
	"github.com/aretw0/minbar/internal/platform"
	"github.com/aretw0/minbar/pkg/adapters/fs"
	"github.com/aretw0/minbar/pkg/adapters/github"
	"github.com/aretw0/minbar/pkg/adapters/memory"
	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/planner"
	"github.com/aretw0/minbar/pkg/tools"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Store.Owner = "masajid"
	cfg.Store.TemplateOwner = "templates"
	cfg.Store.TemplateRepo = "mosque"
	cfg.Planner.OpenAIKey = "sk-test"
	return cfg
}

func TestNew_MemoryPipeline(t *testing.T) {
	ctx := context.Background()
	p := planner.NewStatic(`{"action":"scaffold_site","args":{"name":"Masjid Al-Noor","location":"21.4225,39.8262"}}`)

	app, err := platform.New(ctx, testConfig(),
		platform.WithBackend("memory"),
		platform.WithPlanner(p),
		platform.WithClock(func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, app.Store)
	assert.ElementsMatch(t, core.AllowedActions, app.Registry.Names())

	out := app.Service.Act(ctx, core.Request{Instruction: "create the site"})
	require.Equal(t, core.StatusOK, out.Status, out.Message)
	assert.Equal(t, "masjid-al-noor", out.RepoSlug)

	doc, err := app.Store.ReadDocument(ctx, app.Site("masjid-al-noor"), tools.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 21.4225, doc.Data["lat"])
	assert.Equal(t, "2026-10-19T00:00:00Z", doc.Data["created_iso"])
}

func TestNew_FSBackend(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "templates", "mosque", "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "templates", "mosque", tools.HomepagePath),
		[]byte("<p>"+tools.CopyStart+tools.CopyEnd+"</p>"), 0o644))

	cfg := testConfig()
	cfg.Store.Backend = "fs"
	cfg.FS.Root = root

	app, err := platform.New(ctx, cfg,
		platform.WithVersioning(false),
		platform.WithPlanner(planner.NewStatic(`{"action":"edit_homepage_copy","args":{"instructions":"Welcome"}}`)),
	)
	require.NoError(t, err)
	require.IsType(t, &fs.Repository{}, app.Store)

	_, err = app.Store.CreateSiteFromTemplate(ctx, core.TemplateRef{Owner: "templates", Repo: "mosque"}, "al-noor", "masajid")
	require.NoError(t, err)

	out := app.Service.Act(ctx, core.Request{Instruction: "change the welcome copy", RepoSlug: "al-noor"})
	require.Equal(t, core.StatusOK, out.Status, out.Message)

	html, err := os.ReadFile(filepath.Join(root, "masajid", "al-noor", tools.HomepagePath))
	require.NoError(t, err)
	assert.Equal(t, "<p>"+tools.CopyStart+"\nWelcome\n"+tools.CopyEnd+"</p>", string(html))
}

func TestOpenStore_GitHub(t *testing.T) {
	cfg := testConfig()
	cfg.GitHub.Token = "ghp_test"
	cfg.GitHub.BaseURL = "http://127.0.0.1:1/api/v3"

	store, err := platform.OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &github.Store{}, store)
}

func TestOpenStore_Injected(t *testing.T) {
	injected := memory.New()
	store, err := platform.OpenStore(context.Background(), testConfig(), platform.WithStore(injected))
	require.NoError(t, err)
	assert.Same(t, injected, store)
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := platform.OpenStore(context.Background(), testConfig(), platform.WithBackend("s3"))
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestOpenPlanner(t *testing.T) {
	ctx := context.Background()

	p, err := platform.OpenPlanner(ctx, testConfig())
	require.NoError(t, err)
	assert.IsType(t, &planner.OpenAI{}, p)

	cfg := testConfig()
	cfg.Planner.Provider = "gemini"
	_, err = platform.OpenPlanner(ctx, cfg)
	assert.Equal(t, core.KindAuth, core.KindOf(err), "gemini without a key")

	cfg.Planner.GeminiKey = "g"
	p, err = platform.OpenPlanner(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &planner.Gemini{}, p)

	cfg.Planner.Provider = "oracle"
	_, err = platform.OpenPlanner(ctx, cfg)
	assert.Error(t, err)
}
