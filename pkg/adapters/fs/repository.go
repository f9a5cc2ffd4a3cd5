// Package fs implements core.ContentStore on the local filesystem. Each site is
// a directory <root>/<owner>/<slug>, normally its own git repository, so local
// sites keep the same history and version semantics as hosted ones.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/git"
)

// Config holds the configuration for the filesystem repository.
type Config struct {
	// Root holds one directory per owner, each holding one directory per site.
	Root string
	// Templates holds template sites as <owner>/<repo>. Defaults to Root.
	Templates string
	// Branch names the first branch of new sites. Defaults to "main".
	Branch string
	// Gitless stores plain files without history.
	Gitless bool

	Logger       *slog.Logger
	ErrorHandler func(error) // receives watcher errors; optional
}

// Repository implements core.ContentStore using the filesystem and Git.
type Repository struct {
	config Config

	mu             sync.RWMutex
	activeWatchers int
	lastEvent      *time.Time
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Templates == "" {
		config.Templates = config.Root
	}
	if config.Branch == "" {
		config.Branch = "main"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{config: config}
}

// Initialize creates the root directory and checks that git is available.
func (r *Repository) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(r.config.Root, 0755); err != nil {
		return fmt.Errorf("failed to create root directory: %w", err)
	}
	if !r.config.Gitless && !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}
	return nil
}

// ReadDocument implements core.ContentStore.
func (r *Repository) ReadDocument(ctx context.Context, site core.SiteRef, path string) (core.Document, error) {
	content, err := r.readFile(site, path)
	if err != nil {
		return core.Document{}, err
	}
	var data core.Metadata
	if err := json.Unmarshal(content, &data); err != nil {
		return core.Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if data == nil {
		data = core.Metadata{}
	}
	return core.Document{Path: path, Data: data, Version: git.BlobSHA(content)}, nil
}

// WriteDocument implements core.ContentStore.
func (r *Repository) WriteDocument(ctx context.Context, site core.SiteRef, doc core.Document, message string) (string, error) {
	content, err := json.MarshalIndent(doc.Data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", doc.Path, err)
	}
	return r.writeFile(ctx, site, doc.Path, content, doc.Version, message)
}

// ReadAsset implements core.ContentStore.
func (r *Repository) ReadAsset(ctx context.Context, site core.SiteRef, path string) (core.Asset, error) {
	content, err := r.readFile(site, path)
	if err != nil {
		return core.Asset{}, err
	}
	return core.Asset{Path: path, Content: content, Version: git.BlobSHA(content)}, nil
}

// PutAsset implements core.ContentStore.
func (r *Repository) PutAsset(ctx context.Context, site core.SiteRef, asset core.Asset, message string) (string, error) {
	return r.writeFile(ctx, site, asset.Path, asset.Content, asset.Version, message)
}

// CreateSiteFromTemplate copies the template tree into a new site directory
// and, unless gitless, records it as the first commit.
func (r *Repository) CreateSiteFromTemplate(ctx context.Context, tmpl core.TemplateRef, slug, owner string) (core.SiteRef, error) {
	site := core.SiteRef{Owner: owner, Name: slug}
	dest, err := r.sitePath(site)
	if err != nil {
		return core.SiteRef{}, err
	}
	if tmpl.Owner == "" || tmpl.Repo == "" {
		return core.SiteRef{}, fmt.Errorf("%w: template owner and repo are required", core.ErrInvalidArgument)
	}
	src, err := safeJoin(r.config.Templates, tmpl.Owner, tmpl.Repo)
	if err != nil {
		return core.SiteRef{}, err
	}
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return core.SiteRef{}, fmt.Errorf("template %s/%s: %w", tmpl.Owner, tmpl.Repo, core.ErrNotFound)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return core.SiteRef{}, fmt.Errorf("failed to create owner directory: %w", err)
	}
	// Mkdir fails if dest exists, which makes creation exclusive.
	if err := os.Mkdir(dest, 0755); err != nil {
		if os.IsExist(err) {
			return core.SiteRef{}, fmt.Errorf("create %s: %w", site, core.ErrAlreadyExists)
		}
		return core.SiteRef{}, fmt.Errorf("create %s: %w", site, err)
	}

	if err := copyTree(src, dest); err != nil {
		return core.SiteRef{}, fmt.Errorf("copy template into %s: %w", site, err)
	}
	if _, err := ensureIgnore(dest, git.LockFile); err != nil {
		return core.SiteRef{}, fmt.Errorf("failed to ensure .gitignore: %w", err)
	}

	if !r.config.Gitless {
		client := git.NewClient(dest, r.config.Logger)
		if err := client.Init(ctx, r.config.Branch); err != nil {
			return core.SiteRef{}, fmt.Errorf("failed to git init %s: %w", site, err)
		}
		if err := client.Add(ctx, "."); err != nil {
			return core.SiteRef{}, fmt.Errorf("failed to stage template: %w", err)
		}
		msg := core.FormatChangeReason(core.CommitTypeChore, "", "generate from "+tmpl.Owner+"/"+tmpl.Repo, "")
		if err := client.Commit(ctx, msg); err != nil {
			return core.SiteRef{}, fmt.Errorf("failed to commit template: %w", err)
		}
	}

	site.URL = "file://" + filepath.ToSlash(dest)
	r.config.Logger.Info("site created", "site", site.String(), "path", dest)
	return site, nil
}

// ListCommits implements core.ContentStore. Gitless sites have no history.
func (r *Repository) ListCommits(ctx context.Context, site core.SiteRef, limit int) ([]core.Commit, error) {
	dir, err := r.existingSite(site)
	if err != nil {
		return nil, err
	}
	client := git.NewClient(dir, r.config.Logger)
	if !r.versioned(client) {
		return []core.Commit{}, nil
	}

	entries, err := client.Log(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list commits of %s: %w", site, err)
	}
	out := make([]core.Commit, 0, len(entries))
	for _, e := range entries {
		out = append(out, core.Commit{
			SHA:     e.SHA,
			Message: e.Message,
			URL:     "file://" + filepath.ToSlash(dir) + "#" + e.SHA,
		})
	}
	return out, nil
}

func (r *Repository) readFile(site core.SiteRef, path string) ([]byte, error) {
	dir, err := r.existingSite(site)
	if err != nil {
		return nil, err
	}
	full, err := safeJoin(dir, path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, core.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}

// writeFile is the compare-and-write step. The site lock makes the version
// check and the write atomic with respect to other writers, in this process
// or another.
func (r *Repository) writeFile(ctx context.Context, site core.SiteRef, path string, content []byte, expected, message string) (string, error) {
	dir, err := r.existingSite(site)
	if err != nil {
		return "", err
	}
	full, err := safeJoin(dir, path)
	if err != nil {
		return "", err
	}

	client := git.NewClient(dir, r.config.Logger)
	unlock, err := client.Lock(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to acquire site lock: %w", err)
	}
	defer unlock()

	if expected != "" {
		current, err := os.ReadFile(full)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		if err != nil || git.BlobSHA(current) != expected {
			return "", fmt.Errorf("write %s: %w", path, core.ErrConflict)
		}
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := writeFileAtomic(full, content, 0644); err != nil {
		return "", err
	}

	if r.versioned(client) {
		rel := filepath.ToSlash(filepath.Clean(path))
		if err := client.Add(ctx, rel); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", path, err)
		}
		if err := client.Commit(ctx, message); err != nil {
			return "", fmt.Errorf("failed to commit %s: %w", path, err)
		}
	}

	version := git.BlobSHA(content)
	r.config.Logger.Debug("file written", "site", site.String(), "path", path, "version", version)
	return version, nil
}

// versioned reports whether writes to the site behind client are committed.
// Sites placed under the root without a repository are kept as plain files.
func (r *Repository) versioned(client *git.Client) bool {
	return !r.config.Gitless && client.IsRepo()
}

func (r *Repository) sitePath(site core.SiteRef) (string, error) {
	for _, part := range []string{site.Owner, site.Name} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("%w: bad site %q", core.ErrInvalidArgument, site.String())
		}
	}
	return safeJoin(r.config.Root, site.Owner, site.Name)
}

func (r *Repository) existingSite(site core.SiteRef) (string, error) {
	dir, err := r.sitePath(site)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("site %s: %w", site, core.ErrNotFound)
	}
	return dir, nil
}

// safeJoin joins elems under base and rejects results that escape it.
func safeJoin(base string, elems ...string) (string, error) {
	for _, e := range elems {
		if filepath.IsAbs(e) {
			return "", fmt.Errorf("%w: absolute path %q", core.ErrInvalidArgument, e)
		}
	}
	joined := filepath.Join(append([]string{base}, elems...)...)
	rel, err := filepath.Rel(base, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %q escapes %s", core.ErrInvalidArgument, filepath.Join(elems...), base)
	}
	return joined, nil
}

func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, content, 0644)
	})
}

// ensureIgnore appends entry to dir/.gitignore unless it is already listed.
func ensureIgnore(dir, entry string) (bool, error) {
	ignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == entry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(entry + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

var _ core.ContentStore = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
