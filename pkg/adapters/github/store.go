// Package github implements core.ContentStore on top of the GitHub REST API.
//
// Every content request is pinned to one branch. Version tokens are the blob
// SHAs GitHub reports for each file, which lets the contents API enforce
// optimistic concurrency through its sha parameter.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/aretw0/minbar/pkg/core"
)

// DefaultBranch is used when Config.Branch is empty.
const DefaultBranch = "main"

// Config holds the configuration for the GitHub store.
type Config struct {
	Token      string
	Branch     string
	BaseURL    string // API root, e.g. for GitHub Enterprise or tests
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Store is a core.ContentStore backed by GitHub repositories.
type Store struct {
	client *gh.Client
	branch string
	logger *slog.Logger
}

// New creates a GitHub-backed store.
func New(cfg Config) (*Store, error) {
	client := gh.NewClient(cfg.HTTPClient)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url: %w", err)
		}
		client.BaseURL = u
	}

	branch := cfg.Branch
	if branch == "" {
		branch = DefaultBranch
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, branch: branch, logger: logger}, nil
}

// ReadDocument implements core.ContentStore.
func (s *Store) ReadDocument(ctx context.Context, site core.SiteRef, path string) (core.Document, error) {
	content, version, err := s.get(ctx, site, path)
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
	return core.Document{Path: path, Data: data, Version: version}, nil
}

// WriteDocument implements core.ContentStore. Documents are written as
// two-space indented JSON.
func (s *Store) WriteDocument(ctx context.Context, site core.SiteRef, doc core.Document, message string) (string, error) {
	content, err := json.MarshalIndent(doc.Data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", doc.Path, err)
	}
	return s.put(ctx, site, doc.Path, content, doc.Version, message)
}

// ReadAsset implements core.ContentStore.
func (s *Store) ReadAsset(ctx context.Context, site core.SiteRef, path string) (core.Asset, error) {
	content, version, err := s.get(ctx, site, path)
	if err != nil {
		return core.Asset{}, err
	}
	return core.Asset{Path: path, Content: content, Version: version}, nil
}

// PutAsset implements core.ContentStore.
func (s *Store) PutAsset(ctx context.Context, site core.SiteRef, asset core.Asset, message string) (string, error) {
	return s.put(ctx, site, asset.Path, asset.Content, asset.Version, message)
}

// CreateSiteFromTemplate implements core.ContentStore.
func (s *Store) CreateSiteFromTemplate(ctx context.Context, tmpl core.TemplateRef, slug, owner string) (core.SiteRef, error) {
	req := &gh.TemplateRepoRequest{Name: gh.String(slug)}
	if owner != "" {
		req.Owner = gh.String(owner)
	}

	repo, resp, err := s.client.Repositories.CreateFromTemplate(ctx, tmpl.Owner, tmpl.Repo, req)
	if err != nil {
		return core.SiteRef{}, fmt.Errorf("create %s from %s/%s: %w", slug, tmpl.Owner, tmpl.Repo, classify(resp, err, opGenerate))
	}

	site := core.SiteRef{
		Owner: repo.GetOwner().GetLogin(),
		Name:  repo.GetName(),
		URL:   repo.GetHTMLURL(),
	}
	if site.Owner == "" {
		site.Owner = owner
	}
	if site.Name == "" {
		site.Name = slug
	}
	s.logger.Info("repository generated", "site", site.String(), "template", tmpl.Owner+"/"+tmpl.Repo)
	return site, nil
}

// ListCommits implements core.ContentStore.
func (s *Store) ListCommits(ctx context.Context, site core.SiteRef, limit int) ([]core.Commit, error) {
	opts := &gh.CommitsListOptions{SHA: s.branch}
	if limit > 0 {
		opts.PerPage = limit
	}
	commits, resp, err := s.client.Repositories.ListCommits(ctx, site.Owner, site.Name, opts)
	if err != nil {
		return nil, fmt.Errorf("list commits of %s: %w", site, classify(resp, err, opRead))
	}

	out := make([]core.Commit, 0, len(commits))
	for _, c := range commits {
		out = append(out, core.Commit{
			SHA:     c.GetSHA(),
			Message: c.GetCommit().GetMessage(),
			URL:     c.GetHTMLURL(),
		})
	}
	return out, nil
}

func (s *Store) get(ctx context.Context, site core.SiteRef, path string) ([]byte, string, error) {
	file, dir, resp, err := s.client.Repositories.GetContents(ctx, site.Owner, site.Name, path,
		&gh.RepositoryContentGetOptions{Ref: s.branch})
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, classify(resp, err, opRead))
	}
	if file == nil {
		return nil, "", fmt.Errorf("read %s: is a directory of %d entries: %w", path, len(dir), core.ErrNotFound)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return []byte(content), file.GetSHA(), nil
}

// put creates or updates path. An empty version writes over whatever is
// there, looking up the current SHA first as the API requires.
func (s *Store) put(ctx context.Context, site core.SiteRef, path string, content []byte, version, message string) (string, error) {
	if version == "" {
		_, current, err := s.get(ctx, site, path)
		switch {
		case err == nil:
			version = current
		case core.KindOf(err) != core.KindNotFound:
			return "", err
		}
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: content,
		Branch:  gh.String(s.branch),
	}

	var (
		res  *gh.RepositoryContentResponse
		resp *gh.Response
		err  error
	)
	if version == "" {
		res, resp, err = s.client.Repositories.CreateFile(ctx, site.Owner, site.Name, path, opts)
	} else {
		opts.SHA = gh.String(version)
		res, resp, err = s.client.Repositories.UpdateFile(ctx, site.Owner, site.Name, path, opts)
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, classify(resp, err, opWrite))
	}

	newVersion := res.GetContent().GetSHA()
	s.logger.Debug("file written",
		"site", site.String(),
		"path", path,
		"version", newVersion,
		"commit", res.Commit.GetSHA(),
	)
	return newVersion, nil
}

var _ core.ContentStore = (*Store)(nil)
