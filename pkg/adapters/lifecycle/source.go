// Package lifecycle bridges site change events into aretw0/lifecycle sources.
package lifecycle

import (
	"context"
	"strings"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/minbar/pkg/core"
)

type siteSource struct {
	events   <-chan core.Event
	patterns []string
	out      chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that re-emits site events. When
// patterns are given, only events whose path matches one of them (doublestar
// syntax, case-insensitive) pass.
func NewSource(events <-chan core.Event, patterns ...string) lifecycle.Source {
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		lowered = append(lowered, strings.ToLower(p))
	}
	return &siteSource{
		events:   events,
		patterns: lowered,
		out:      make(chan lifecycle.Event),
	}
}

func (s *siteSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *siteSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if !s.match(e.Path) {
					continue
				}
				// core.Event implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

func (s *siteSource) match(path string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	lower := strings.ToLower(path)
	for _, p := range s.patterns {
		if ok, _ := doublestar.Match(p, lower); ok {
			return true
		}
	}
	return false
}
