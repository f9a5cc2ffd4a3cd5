package memory

import (
	"sort"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Sites     []string       `json:"sites"`
	Files     map[string]int `json:"files"`
	Templates int            `json:"templates"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := StoreState{
		Sites:     make([]string, 0, len(s.sites)),
		Files:     make(map[string]int, len(s.sites)),
		Templates: len(s.templates),
	}
	for k, st := range s.sites {
		state.Sites = append(state.Sites, k)
		state.Files[k] = len(st.files)
	}
	sort.Strings(state.Sites)
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
