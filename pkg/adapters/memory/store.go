// Package memory provides an in-process core.ContentStore with the same
// versioning semantics as the remote adapters. It backs tests and dry runs.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/git"
)

type file struct {
	content []byte
	version string
}

type site struct {
	ref     core.SiteRef
	files   map[string]file
	commits []core.Commit
}

// Store is a concurrency-safe in-memory content store.
type Store struct {
	mu        sync.RWMutex
	sites     map[string]*site
	templates map[string]map[string][]byte
	logger    *slog.Logger
	baseURL   string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for write tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTemplate registers template files that new sites generated from
// owner/repo start with.
func WithTemplate(tmpl core.TemplateRef, files map[string][]byte) Option {
	return func(s *Store) {
		s.templates[tmpl.Owner+"/"+tmpl.Repo] = files
	}
}

// WithBaseURL sets the prefix used to build site and commit URLs.
func WithBaseURL(url string) Option {
	return func(s *Store) {
		s.baseURL = url
	}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		sites:     make(map[string]*site),
		templates: make(map[string]map[string][]byte),
		logger:    slog.New(slog.DiscardHandler),
		baseURL:   "memory://",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed creates a site directly, bypassing templates. Existing sites are
// replaced.
func (s *Store) Seed(ref core.SiteRef, files map[string][]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &site{ref: s.withURL(ref), files: make(map[string]file, len(files))}
	for path, content := range files {
		st.files[path] = file{content: content, version: git.BlobSHA(content)}
	}
	s.sites[key(ref)] = st
}

// ReadDocument implements core.ContentStore.
func (s *Store) ReadDocument(ctx context.Context, ref core.SiteRef, path string) (core.Document, error) {
	f, err := s.read(ctx, ref, path)
	if err != nil {
		return core.Document{}, err
	}
	var data core.Metadata
	if err := json.Unmarshal(f.content, &data); err != nil {
		return core.Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if data == nil {
		data = core.Metadata{}
	}
	return core.Document{Path: path, Data: data, Version: f.version}, nil
}

// WriteDocument implements core.ContentStore.
func (s *Store) WriteDocument(ctx context.Context, ref core.SiteRef, doc core.Document, message string) (string, error) {
	content, err := json.MarshalIndent(doc.Data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", doc.Path, err)
	}
	return s.write(ctx, ref, doc.Path, content, doc.Version, message)
}

// ReadAsset implements core.ContentStore.
func (s *Store) ReadAsset(ctx context.Context, ref core.SiteRef, path string) (core.Asset, error) {
	f, err := s.read(ctx, ref, path)
	if err != nil {
		return core.Asset{}, err
	}
	return core.Asset{Path: path, Content: f.content, Version: f.version}, nil
}

// PutAsset implements core.ContentStore.
func (s *Store) PutAsset(ctx context.Context, ref core.SiteRef, asset core.Asset, message string) (string, error) {
	return s.write(ctx, ref, asset.Path, asset.Content, asset.Version, message)
}

// CreateSiteFromTemplate implements core.ContentStore.
func (s *Store) CreateSiteFromTemplate(ctx context.Context, tmpl core.TemplateRef, slug, owner string) (core.SiteRef, error) {
	if err := ctx.Err(); err != nil {
		return core.SiteRef{}, err
	}
	ref := s.withURL(core.SiteRef{Owner: owner, Name: slug})

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sites[key(ref)]; ok {
		return core.SiteRef{}, fmt.Errorf("create %s: %w", ref, core.ErrAlreadyExists)
	}
	files, ok := s.templates[tmpl.Owner+"/"+tmpl.Repo]
	if !ok && (tmpl.Owner != "" || tmpl.Repo != "") {
		return core.SiteRef{}, fmt.Errorf("template %s/%s: %w", tmpl.Owner, tmpl.Repo, core.ErrNotFound)
	}

	st := &site{ref: ref, files: make(map[string]file, len(files))}
	for path, content := range files {
		st.files[path] = file{content: content, version: git.BlobSHA(content)}
	}
	st.record(s.baseURL, "Initial commit")
	s.sites[key(ref)] = st
	s.logger.Debug("site created", "site", ref.String(), "template", tmpl.Owner+"/"+tmpl.Repo)
	return ref, nil
}

// ListCommits implements core.ContentStore.
func (s *Store) ListCommits(ctx context.Context, ref core.SiteRef, limit int) ([]core.Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sites[key(ref)]
	if !ok {
		return nil, fmt.Errorf("site %s: %w", ref, core.ErrNotFound)
	}
	out := make([]core.Commit, 0, len(st.commits))
	for i := len(st.commits) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, st.commits[i])
	}
	return out, nil
}

func (s *Store) read(ctx context.Context, ref core.SiteRef, path string) (file, error) {
	if err := ctx.Err(); err != nil {
		return file{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sites[key(ref)]
	if !ok {
		return file{}, fmt.Errorf("site %s: %w", ref, core.ErrNotFound)
	}
	f, ok := st.files[path]
	if !ok {
		return file{}, fmt.Errorf("read %s: %w", path, core.ErrNotFound)
	}
	return f, nil
}

// write is the single compare-and-set point of the store.
func (s *Store) write(ctx context.Context, ref core.SiteRef, path string, content []byte, expected, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sites[key(ref)]
	if !ok {
		return "", fmt.Errorf("site %s: %w", ref, core.ErrNotFound)
	}
	current, exists := st.files[path]
	if expected != "" && (!exists || current.version != expected) {
		return "", fmt.Errorf("write %s: %w", path, core.ErrConflict)
	}

	stored := make([]byte, len(content))
	copy(stored, content)
	version := git.BlobSHA(stored)
	st.files[path] = file{content: stored, version: version}
	st.record(s.baseURL, message)

	s.logger.Debug("file written", "site", ref.String(), "path", path, "version", version)
	return version, nil
}

func (st *site) record(baseURL, message string) {
	sha := git.BlobSHA([]byte(strconv.Itoa(len(st.commits)) + "\x00" + message))
	st.commits = append(st.commits, core.Commit{
		SHA:     sha,
		Message: message,
		URL:     baseURL + st.ref.String() + "/commit/" + sha,
	})
}

func (s *Store) withURL(ref core.SiteRef) core.SiteRef {
	if ref.URL == "" {
		ref.URL = s.baseURL + ref.String()
	}
	return ref
}

func key(ref core.SiteRef) string {
	return ref.Owner + "/" + ref.Name
}

var _ core.ContentStore = (*Store)(nil)
