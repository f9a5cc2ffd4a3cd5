package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v66/github"

	"github.com/aretw0/minbar/pkg/core"
)

type operation int

const (
	opRead operation = iota
	opWrite
	opGenerate
)

// classify maps a go-github failure onto the core error taxonomy. The
// original error stays in the chain.
func classify(resp *gh.Response, err error, op operation) error {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return fmt.Errorf("%w: %w", core.ErrRateLimited, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", core.ErrNetwork, err)
	}

	status := 0
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		status = respErr.Response.StatusCode
	} else if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}

	switch {
	case status == 0:
		return fmt.Errorf("%w: %w", core.ErrNetwork, err)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", core.ErrNotFound, err)
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %w", core.ErrConflict, err)
	case status == http.StatusUnprocessableEntity && op == opGenerate:
		return fmt.Errorf("%w: %w", core.ErrAlreadyExists, err)
	case status == http.StatusUnprocessableEntity && op == opWrite:
		return fmt.Errorf("%w: %w", core.ErrConflict, err)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", core.ErrAuth, err)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", core.ErrRateLimited, err)
	case status >= 500:
		return fmt.Errorf("%w: upstream status %d: %w", core.ErrNetwork, status, err)
	default:
		return fmt.Errorf("%w: unexpected status %d: %w", core.ErrInvalidArgument, status, err)
	}
}
