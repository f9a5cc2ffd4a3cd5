package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/minbar/pkg/adapters/fs"
	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/git"
)

var tmpl = core.TemplateRef{Owner: "masajid", Repo: "site-template"}

// setupRepo creates a root holding one template site and returns the
// repository and the root path.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	root := t.TempDir()
	tmplDir := filepath.Join(root, tmpl.Owner, tmpl.Repo)
	require.NoError(t, os.MkdirAll(filepath.Join(tmplDir, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "docs", "index.html"),
		[]byte("<main><!--COPY_START-->hi<!--COPY_END--></main>"), 0644))

	cfg := fs.Config{
		Root:    root,
		Gitless: true, // Default to gitless for simplicity unless overridden
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo := fs.NewRepository(cfg)
	require.NoError(t, repo.Initialize(context.Background()))
	return repo, root
}

func withGit(t *testing.T) func(*fs.Config) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	return func(c *fs.Config) { c.Gitless = false }
}

func TestCreateSiteFromTemplate(t *testing.T) {
	ctx := context.Background()
	repo, root := setupRepo(t)

	site, err := repo.CreateSiteFromTemplate(ctx, tmpl, "al-noor", "masajid")
	require.NoError(t, err)
	assert.Equal(t, "masajid/al-noor", site.String())

	content, err := os.ReadFile(filepath.Join(root, "masajid", "al-noor", "docs", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "COPY_START")

	_, err = repo.CreateSiteFromTemplate(ctx, tmpl, "al-noor", "masajid")
	assert.ErrorIs(t, err, core.ErrAlreadyExists)

	_, err = repo.CreateSiteFromTemplate(ctx, core.TemplateRef{Owner: "masajid", Repo: "nope"}, "x", "masajid")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = repo.CreateSiteFromTemplate(ctx, tmpl, "../escape", "masajid")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)
	site, err := repo.CreateSiteFromTemplate(ctx, tmpl, "al-noor", "masajid")
	require.NoError(t, err)

	_, err = repo.ReadDocument(ctx, site, "docs/content/eid.json")
	require.ErrorIs(t, err, core.ErrNotFound)

	v1, err := repo.WriteDocument(ctx, site, core.Document{
		Path: "docs/content/eid.json",
		Data: core.Metadata{"visible": false, "datetime": nil},
	}, "chore: initialize eid")
	require.NoError(t, err)

	doc, err := repo.ReadDocument(ctx, site, "docs/content/eid.json")
	require.NoError(t, err)
	assert.Equal(t, v1, doc.Version)
	assert.Equal(t, false, doc.Data["visible"])

	doc.Data["visible"] = true
	v2, err := repo.WriteDocument(ctx, site, doc, "feat: set eid")
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)

	_, err = repo.WriteDocument(ctx, site, core.Document{Path: doc.Path, Data: core.Metadata{}, Version: v1}, "stale")
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = repo.ReadDocument(ctx, site, "../../outside.json")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = repo.ReadDocument(ctx, core.SiteRef{Owner: "masajid", Name: "ghost"}, "docs/content/eid.json")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestConcurrentConditionalWrites(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)
	site, err := repo.CreateSiteFromTemplate(ctx, tmpl, "al-noor", "masajid")
	require.NoError(t, err)

	v0, err := repo.WriteDocument(ctx, site, core.Document{Path: "docs/content/config.json", Data: core.Metadata{"theme": "default"}}, "seed")
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = repo.WriteDocument(ctx, site, core.Document{
				Path:    "docs/content/config.json",
				Data:    core.Metadata{"theme": i},
				Version: v0,
			}, "race")
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, core.ErrConflict)
	}
	assert.Equal(t, 1, ok, "exactly one writer wins")
}

func TestGitHistory(t *testing.T) {
	ctx := context.Background()
	repo, root := setupRepo(t, withGit(t))
	site, err := repo.CreateSiteFromTemplate(ctx, tmpl, "al-noor", "masajid")
	require.NoError(t, err)

	_, err = repo.PutAsset(ctx, site, core.Asset{Path: "docs/assets/images/logo.png", Content: []byte{1, 2, 3}}, "feat: add image logo.png")
	require.NoError(t, err)

	commits, err := repo.ListCommits(ctx, site, 20)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "feat: add image logo.png", commits[0].Message)
	assert.Len(t, commits[0].SHA, 40)

	out, err := git.NewClient(filepath.Join(root, "masajid", "al-noor"), nil).Run(ctx, "status", "--porcelain")
	require.NoError(t, err)
	assert.Empty(t, out, "the lock file must be ignored and every write committed")
}

func TestUnversionedSiteInGitMode(t *testing.T) {
	ctx := context.Background()
	repo, root := setupRepo(t, withGit(t))

	// a site copied in by hand, without a repository of its own
	dir := filepath.Join(root, "masajid", "al-furqan", "docs", "content")
	require.NoError(t, os.MkdirAll(dir, 0755))
	site := core.SiteRef{Owner: "masajid", Name: "al-furqan"}

	version, err := repo.WriteDocument(ctx, site, core.Document{Path: "docs/content/eid.json", Data: core.Metadata{"show_eid": true}}, "feat: show eid")
	require.NoError(t, err)
	assert.NotEmpty(t, version)

	doc, err := repo.ReadDocument(ctx, site, "docs/content/eid.json")
	require.NoError(t, err)
	assert.Equal(t, version, doc.Version)

	commits, err := repo.ListCommits(ctx, site, 20)
	require.NoError(t, err)
	assert.Empty(t, commits)
	assert.NoDirExists(t, filepath.Join(root, "masajid", "al-furqan", ".git"))
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, _ := setupRepo(t)
	site, err := repo.CreateSiteFromTemplate(ctx, tmpl, "al-noor", "masajid")
	require.NoError(t, err)

	events, err := repo.Watch(ctx, site)
	require.NoError(t, err)

	_, err = repo.PutAsset(ctx, site, core.Asset{Path: "docs/index.html", Content: []byte("<main/>")}, "edit")
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-events:
			if e.Path == "docs/index.html" {
				assert.Equal(t, site, e.Site)
				cancel()
				// channel closes once the watcher stops
				for range events {
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for watch event")
		}
	}
}
