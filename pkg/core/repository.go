package core

import "context"

// ContentStore defines the contract for reading and writing a site's documents
// and assets. Adhering to this interface keeps the pipeline independent of the
// hosting service (GitHub, a local git checkout, memory).
//
// Writes are optimistic: a non-empty Version must match the store's current
// version for that path or the write fails with ErrConflict. Implementations
// never retry.
type ContentStore interface {
	// ReadDocument returns the JSON object at path, or ErrNotFound.
	ReadDocument(ctx context.Context, site SiteRef, path string) (Document, error)

	// WriteDocument persists doc.Data at doc.Path and returns the new version.
	WriteDocument(ctx context.Context, site SiteRef, doc Document, message string) (string, error)

	// ReadAsset returns the raw bytes at path, or ErrNotFound.
	ReadAsset(ctx context.Context, site SiteRef, path string) (Asset, error)

	// PutAsset persists asset.Content at asset.Path and returns the new version.
	PutAsset(ctx context.Context, site SiteRef, asset Asset, message string) (string, error)

	// CreateSiteFromTemplate generates a new site named slug under owner.
	// It is not idempotent: an existing slug yields ErrAlreadyExists.
	CreateSiteFromTemplate(ctx context.Context, template TemplateRef, slug, owner string) (SiteRef, error)

	// ListCommits returns up to limit most recent commits, newest first.
	ListCommits(ctx context.Context, site SiteRef, limit int) ([]Commit, error)
}

// Watchable is implemented by stores that can stream changes to a site.
type Watchable interface {
	Watch(ctx context.Context, site SiteRef) (<-chan Event, error)
}

// Planner is the opaque planning oracle. It returns raw text that is expected,
// but not trusted, to parse as {"action": ..., "args": {...}}.
type Planner interface {
	Plan(ctx context.Context, instruction string, callerContext Metadata) (string, error)
}

// PlannerFunc adapts a function to the Planner interface.
type PlannerFunc func(ctx context.Context, instruction string, callerContext Metadata) (string, error)

// Plan implements Planner.
func (f PlannerFunc) Plan(ctx context.Context, instruction string, callerContext Metadata) (string, error) {
	return f(ctx, instruction, callerContext)
}

// Dispatcher routes one validated action to exactly one handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, action Action, args Metadata) ToolResult
}
