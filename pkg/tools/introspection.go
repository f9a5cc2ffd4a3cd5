package tools

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/minbar/pkg/core"
)

// RegistryState exposes internal state for observability.
type RegistryState struct {
	Tools         []core.Action `json:"tools"`
	Owner         string        `json:"owner"`
	Template      string        `json:"template"`
	AssetPatterns []string      `json:"asset_patterns"`
	StoreType     string        `json:"store_type"`
}

// State implements introspection.Introspectable.
func (r *Registry) State() any {
	state := RegistryState{
		Tools:         r.Names(),
		Owner:         r.env.Owner,
		Template:      r.env.Template.Owner + "/" + r.env.Template.Repo,
		AssetPatterns: r.env.AssetPatterns,
		StoreType:     "unknown",
	}
	if comp, ok := r.env.Store.(introspection.Component); ok {
		state.StoreType = comp.ComponentType()
	}
	return state
}

// ComponentType implements introspection.Component.
func (r *Registry) ComponentType() string {
	return "dispatcher"
}

var _ introspection.Introspectable = (*Registry)(nil)
var _ introspection.Component = (*Registry)(nil)
