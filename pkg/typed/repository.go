// Package typed provides generic, version-aware access to the JSON documents
// of a core.ContentStore.
package typed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/minbar/pkg/core"
)

// Document is a typed view of a core.Document.
type Document[T any] struct {
	Site    core.SiteRef
	Path    string
	Version string   // empty for documents that do not exist yet
	Data    T        // The typed content
	Saver   Saver[T] // Active Record reference interface

	// raw keeps the object as read so that keys unknown to T survive a Save.
	raw core.Metadata
}

// Exists reports whether the document was read from the store.
func (d *Document[T]) Exists() bool {
	return d.Version != ""
}

// Saver interface avoids circular dependencies or tight coupling with Repository structs.
type Saver[T any] interface {
	Save(ctx context.Context, doc *Document[T], message string) error
}

// Save persists the document using the attached saver.
func (d *Document[T]) Save(ctx context.Context, message string) error {
	if d.Saver == nil {
		return fmt.Errorf("document is detached (missing Saver)")
	}
	return d.Saver.Save(ctx, d, message)
}

// Repository wraps a core.ContentStore to provide type-safe, version-aware access.
type Repository[T any] struct {
	store core.ContentStore
}

// NewRepository creates a new type-safe wrapper around an existing store.
func NewRepository[T any](store core.ContentStore) *Repository[T] {
	return &Repository[T]{store: store}
}

// Get retrieves a document and unmarshals it into T.
func (r *Repository[T]) Get(ctx context.Context, site core.SiteRef, path string) (*Document[T], error) {
	coreDoc, err := r.store.ReadDocument(ctx, site, path)
	if err != nil {
		return nil, err
	}
	return fromCore[T](site, coreDoc, r)
}

// GetOrDefault behaves like Get but returns a new, unversioned document holding
// def when the store has nothing at path.
func (r *Repository[T]) GetOrDefault(ctx context.Context, site core.SiteRef, path string, def T) (*Document[T], error) {
	doc, err := r.Get(ctx, site, path)
	if errors.Is(err, core.ErrNotFound) {
		return r.New(site, path, def), nil
	}
	return doc, err
}

// New returns an unsaved document attached to r.
func (r *Repository[T]) New(site core.SiteRef, path string, data T) *Document[T] {
	return &Document[T]{Site: site, Path: path, Data: data, Saver: r}
}

// Save writes doc.Data back, conditional on doc.Version when it is set.
// On success doc.Version holds the new version.
func (r *Repository[T]) Save(ctx context.Context, doc *Document[T], message string) error {
	data, err := toMetadata(doc.Data, doc.raw)
	if err != nil {
		return err
	}

	if doc.Saver == nil {
		doc.Saver = r
	}

	version, err := r.store.WriteDocument(ctx, doc.Site, core.Document{
		Path:    doc.Path,
		Data:    data,
		Version: doc.Version,
	}, message)
	if err != nil {
		return err
	}
	doc.Version = version
	doc.raw = data
	return nil
}

// Helper to convert core.Document to Document
func fromCore[T any](site core.SiteRef, coreDoc core.Document, saver Saver[T]) (*Document[T], error) {
	dataBytes, err := json.Marshal(coreDoc.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", coreDoc.Path, err)
	}

	var data T
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coreDoc.Path, err)
	}

	return &Document[T]{
		Site:    site,
		Path:    coreDoc.Path,
		Version: coreDoc.Version,
		Data:    data,
		Saver:   saver,
		raw:     coreDoc.Data,
	}, nil
}

// toMetadata converts data to a JSON object laid over base.
func toMetadata[T any](data T, base core.Metadata) (core.Metadata, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}

	var fields core.Metadata
	if err := json.Unmarshal(dataBytes, &fields); err != nil {
		return nil, fmt.Errorf("typed data must encode as a JSON object: %w", err)
	}

	out := base.Clone()
	for k, v := range fields {
		out[k] = v
	}
	return out, nil
}
