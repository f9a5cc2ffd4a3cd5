package core

import (
	"errors"
	"fmt"
)

// Kind classifies an error for envelopes and HTTP mapping.
type Kind string

const (
	KindNone                  Kind = ""
	KindMalformedPlan         Kind = "MalformedPlan"
	KindMissingField          Kind = "MissingField"
	KindUnknownAction         Kind = "UnknownAction"
	KindMissingSiteIdentifier Kind = "MissingSiteIdentifier"
	KindNotFound              Kind = "NotFound"
	KindConflict              Kind = "Conflict"
	KindAlreadyExists         Kind = "AlreadyExists"
	KindRateLimited           Kind = "RateLimited"
	KindAuth                  Kind = "AuthError"
	KindNetwork               Kind = "NetworkError"
	KindMarkersNotFound       Kind = "MarkersNotFound"
	KindImageUploadFailed     Kind = "ImageUploadFailed"
	KindInvalidArgument       Kind = "InvalidArgument"
	KindPlanner               Kind = "PlannerError"
	KindInternal              Kind = "Internal"
)

// Plan and merge stage errors.
var (
	ErrMalformedPlan         = errors.New("malformed plan")
	ErrMissingField          = errors.New("missing field")
	ErrUnknownAction         = errors.New("action not allowed")
	ErrMissingSiteIdentifier = errors.New("repo_slug required for this action")
)

// Content store errors.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("version conflict")
	// ErrAlreadyExists is a Conflict: errors.Is(ErrAlreadyExists, ErrConflict) holds.
	ErrAlreadyExists = fmt.Errorf("%w: already exists", ErrConflict)
	ErrRateLimited   = errors.New("rate limited")
	ErrAuth          = errors.New("authentication failed")
	ErrNetwork       = errors.New("network error")
)

// Handler errors.
var (
	ErrMarkersNotFound   = errors.New("copy markers not found")
	ErrImageUploadFailed = errors.New("image upload failed")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrPlanner           = errors.New("planner error")
	ErrInternal          = errors.New("internal error")
)

// kinds is ordered: more specific sentinels come before the ones they wrap.
var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrMalformedPlan, KindMalformedPlan},
	{ErrMissingField, KindMissingField},
	{ErrUnknownAction, KindUnknownAction},
	{ErrMissingSiteIdentifier, KindMissingSiteIdentifier},
	{ErrNotFound, KindNotFound},
	{ErrAlreadyExists, KindAlreadyExists},
	{ErrConflict, KindConflict},
	{ErrRateLimited, KindRateLimited},
	{ErrAuth, KindAuth},
	{ErrNetwork, KindNetwork},
	{ErrMarkersNotFound, KindMarkersNotFound},
	{ErrImageUploadFailed, KindImageUploadFailed},
	{ErrInvalidArgument, KindInvalidArgument},
	{ErrPlanner, KindPlanner},
	{ErrInternal, KindInternal},
}

// KindOf returns the Kind of the first taxonomy sentinel found in err's chain.
// Unclassified non-nil errors are Internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// NewToolError converts err into its envelope form.
func NewToolError(err error) *ToolError {
	if err == nil {
		return nil
	}
	return &ToolError{Kind: KindOf(err), Message: err.Error()}
}
