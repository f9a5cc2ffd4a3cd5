// Package tools implements the dispatcher and the handlers behind every
// allowed action.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/minbar/pkg/core"
)

// Registry maps each action to exactly one Tool. It implements core.Dispatcher.
type Registry struct {
	mu    sync.RWMutex
	tools map[core.Action]*Tool
	env   Env
}

// NewRegistry creates an empty registry whose handlers run against env.
func NewRegistry(env Env) *Registry {
	return &Registry{
		tools: make(map[core.Action]*Tool),
		env:   env.withDefaults(),
	}
}

// NewDefaultRegistry creates a registry with every built-in tool registered.
func NewDefaultRegistry(env Env) *Registry {
	r := NewRegistry(env)
	for _, tool := range Builtins() {
		r.MustRegister(tool)
	}
	return r
}

// Register adds a tool. Each action has at most one tool.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}
	r.tools[tool.Name] = tool
	r.env.Logger.Debug("registered tool", "tool", tool.Name)
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static tool registration at init time.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool: %v", err))
	}
}

// Get returns the tool for action, or nil.
func (r *Registry) Get(action core.Action) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[action]
}

// Names returns the registered actions, sorted.
func (r *Registry) Names() []core.Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]core.Action, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Dispatch runs the single tool registered for action and normalizes its
// outcome. It never panics and never retries.
func (r *Registry) Dispatch(ctx context.Context, action core.Action, args core.Metadata) (res core.ToolResult) {
	start := time.Now()
	res.Tool = action

	tool := r.Get(action)
	if tool == nil {
		res.Error = core.NewToolError(fmt.Errorf("%w: %w: %s", core.ErrInternal, ErrToolNotFound, action))
		return res
	}

	call, err := r.prepare(tool, args)
	if err != nil {
		res.Error = core.NewToolError(err)
		return res
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			r.env.Logger.Error("tool panic", "tool", action, "panic", recovered)
			res = core.ToolResult{
				Tool:  action,
				Error: core.NewToolError(fmt.Errorf("%w: %s panicked: %v", core.ErrInternal, action, recovered)),
			}
		}
	}()

	result, err := tool.Execute(ctx, call)
	r.env.Logger.Debug("tool finished",
		"tool", action,
		"site", call.Site.String(),
		"duration", time.Since(start),
		"error", err,
	)

	switch {
	case err == nil:
		res.OK = true
		res.Result = result
	case result != nil:
		res.Partial = true
		res.Result = result
		res.Error = core.NewToolError(err)
	default:
		res.Error = core.NewToolError(err)
	}
	return res
}

func (r *Registry) prepare(tool *Tool, args core.Metadata) (Call, error) {
	if err := validateArgs(tool, args); err != nil {
		return Call{}, err
	}

	call := Call{Env: &r.env, Args: Args(args)}
	if tool.NeedsSite {
		slug, _ := args[core.KeyRepoSlug].(string)
		if slug == "" {
			return Call{}, fmt.Errorf("%w: %s", core.ErrMissingSiteIdentifier, tool.Name)
		}
		call.Site = core.SiteRef{Owner: r.env.Owner, Name: slug}
	}
	return call, nil
}

// validateArgs checks that all required arguments are present.
func validateArgs(tool *Tool, args map[string]any) error {
	for _, required := range tool.Required {
		if v, ok := args[required]; !ok || v == nil {
			return fmt.Errorf("%w: %s", ErrMissingRequiredArg, required)
		}
	}
	return nil
}

var _ core.Dispatcher = (*Registry)(nil)
