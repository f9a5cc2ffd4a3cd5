package core

import "fmt"

// KeyRepoSlug is the argument naming the target site.
const KeyRepoSlug = "repo_slug"

// MergeArgs overlays planner arguments onto the caller's context. The result is
// a fresh map: a shallow copy of callerContext in which every key present in
// plannerArgs takes the planner's value. Nested values are not merged.
func MergeArgs(plannerArgs, callerContext Metadata) Metadata {
	merged := callerContext.Clone()
	for k, v := range plannerArgs {
		merged[k] = v
	}
	return merged
}

// ResolveSite ensures merged carries a repo_slug for every action that targets
// an existing site. A missing or empty repo_slug falls back to explicitSlug;
// if that is empty too, ErrMissingSiteIdentifier is returned and merged is left
// untouched.
func ResolveSite(action Action, merged Metadata, explicitSlug string) error {
	if action == ActionScaffoldSite {
		return nil
	}
	if slug, ok := merged[KeyRepoSlug].(string); ok && slug != "" {
		return nil
	}
	if explicitSlug == "" {
		return fmt.Errorf("%w: %s", ErrMissingSiteIdentifier, action)
	}
	merged[KeyRepoSlug] = explicitSlug
	return nil
}
