package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	PlannerType    string   `json:"planner_type"`
	DispatcherType string   `json:"dispatcher_type"`
	Actions        []Action `json:"actions"`
	PlanTimeout    string   `json:"plan_timeout,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	state := ServiceState{
		PlannerType:    componentType(s.planner),
		DispatcherType: componentType(s.dispatcher),
		Actions:        AllowedActions,
	}
	if s.planTimeout > 0 {
		state.PlanTimeout = s.planTimeout.String()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

func componentType(v any) string {
	if v == nil {
		return "none"
	}
	if comp, ok := v.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return "unknown"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
