package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Outcome statuses.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusError   = "error"
)

// Request is one operator instruction.
type Request struct {
	Instruction string   `json:"instruction"`
	Context     Metadata `json:"context"`
	RepoSlug    string   `json:"repo_slug,omitempty"`
}

// Outcome is the response envelope of one pipeline run. Failures are reported
// through Status and Message; Act never returns a Go error.
type Outcome struct {
	Status       string      `json:"status"`
	Message      string      `json:"message"`
	Kind         Kind        `json:"error_kind,omitempty"`
	Action       *Plan       `json:"action,omitempty"`
	WorkerResult *ToolResult `json:"worker_result,omitempty"`
	RepoSlug     string      `json:"repo_slug,omitempty"`
}

// Service runs the Plan-Merge-Dispatch pipeline.
type Service struct {
	planner     Planner
	dispatcher  Dispatcher
	logger      *slog.Logger
	planTimeout time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger. Defaults to slog.Default().
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPlanTimeout bounds the planner call. Zero means no extra bound beyond
// the caller's context.
func WithPlanTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.planTimeout = d
	}
}

// NewService creates a new Service.
func NewService(planner Planner, dispatcher Dispatcher, opts ...ServiceOption) *Service {
	s := &Service{
		planner:    planner,
		dispatcher: dispatcher,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Act plans, validates, merges and dispatches one instruction.
func (s *Service) Act(ctx context.Context, req Request) Outcome {
	start := time.Now()

	raw, err := s.plan(ctx, req)
	if err != nil {
		s.logger.Warn("planner failed", "error", err)
		return failure(fmt.Errorf("manager error: %w", err), nil)
	}

	plan, err := ValidatePlan(raw)
	if err != nil {
		s.logger.Warn("plan rejected", "error", err)
		return failure(fmt.Errorf("manager error: %w", err), nil)
	}

	merged := MergeArgs(plan.Args, req.Context)
	if err := ResolveSite(plan.Action, merged, req.RepoSlug); err != nil {
		s.logger.Warn("site unresolved", "action", plan.Action, "error", err)
		return failure(err, &plan)
	}

	s.logger.Info("dispatching", "action", plan.Action, "repo_slug", merged[KeyRepoSlug])
	result := s.dispatcher.Dispatch(ctx, plan.Action, merged)
	s.logger.Info("dispatched",
		"action", plan.Action,
		"ok", result.OK,
		"partial", result.Partial,
		"duration", time.Since(start),
	)

	out := Outcome{
		Status:       StatusOK,
		Message:      fmt.Sprintf("Action %s executed", plan.Action),
		Action:       &plan,
		WorkerResult: &result,
	}
	if sr, ok := result.Result.(SiteResult); ok {
		out.RepoSlug = sr.CreatedSite().Name
	}

	switch {
	case result.OK:
	case result.Partial:
		out.Status = StatusPartial
		out.Message = fmt.Sprintf("Action %s partially executed", plan.Action)
		if result.Error != nil {
			out.Kind = result.Error.Kind
			out.Message += ": " + result.Error.Message
		}
	default:
		out.Status = StatusError
		out.Kind = KindInternal
		out.Message = "worker error"
		if result.Error != nil {
			out.Kind = result.Error.Kind
			out.Message = "worker error: " + result.Error.Message
		}
	}
	return out
}

func (s *Service) plan(ctx context.Context, req Request) (string, error) {
	if s.planner == nil {
		return "", fmt.Errorf("%w: no planner configured", ErrInternal)
	}
	if s.planTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.planTimeout)
		defer cancel()
	}
	raw, err := s.planner.Plan(ctx, req.Instruction, req.Context)
	if err != nil {
		if KindOf(err) == KindInternal {
			err = fmt.Errorf("%w: %v", ErrPlanner, err)
		}
		return "", err
	}
	return raw, nil
}

func failure(err error, plan *Plan) Outcome {
	return Outcome{
		Status:  StatusError,
		Message: err.Error(),
		Kind:    KindOf(err),
		Action:  plan,
	}
}
