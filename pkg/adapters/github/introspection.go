package github

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Branch  string `json:"branch"`
	BaseURL string `json:"base_url"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	return StoreState{Branch: s.branch, BaseURL: s.client.BaseURL.String()}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "github-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
