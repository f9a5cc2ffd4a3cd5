package planner

import (
	"context"
	"sync"

	"github.com/aretw0/minbar/pkg/core"
)

// Static answers every instruction with the same raw plan. It backs
// `minbar act --plan` and tests that need a deterministic oracle.
type Static struct {
	raw string

	mu   sync.Mutex
	seen []string
}

// NewStatic creates a planner that always returns raw.
func NewStatic(raw string) *Static {
	return &Static{raw: raw}
}

// Plan implements core.Planner.
func (s *Static) Plan(ctx context.Context, instruction string, _ core.Metadata) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.seen = append(s.seen, instruction)
	s.mu.Unlock()
	return s.raw, nil
}

// Instructions returns the instructions received so far.
func (s *Static) Instructions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...)
}

// ComponentType implements introspection.Component.
func (s *Static) ComponentType() string { return "static-planner" }

var _ core.Planner = (*Static)(nil)
