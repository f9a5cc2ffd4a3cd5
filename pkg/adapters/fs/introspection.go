package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Root           string     `json:"root"`
	Templates      string     `json:"templates"`
	Branch         string     `json:"branch"`
	Gitless        bool       `json:"gitless"`
	ActiveWatchers int        `json:"active_watchers"`
	LastEvent      *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RepositoryState{
		Root:           r.config.Root,
		Templates:      r.config.Templates,
		Branch:         r.config.Branch,
		Gitless:        r.config.Gitless,
		ActiveWatchers: r.activeWatchers,
		LastEvent:      r.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs-store"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
