package core_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aretw0/minbar/pkg/core"
)

func TestMergeArgs_PlannerWins(t *testing.T) {
	caller := core.Metadata{"name": "Caller Name", "location": "1,2", "images": []any{"a"}}
	planner := core.Metadata{"name": "Planner Name", "theme": "dark"}

	merged := core.MergeArgs(planner, caller)

	for k, v := range planner {
		if diff := cmp.Diff(v, merged[k]); diff != "" {
			t.Errorf("planner key %q not preferred (-want +got):\n%s", k, diff)
		}
	}
	for k, v := range caller {
		if _, inPlanner := planner[k]; inPlanner {
			continue
		}
		if diff := cmp.Diff(v, merged[k]); diff != "" {
			t.Errorf("caller key %q lost (-want +got):\n%s", k, diff)
		}
	}
	if len(merged) != 4 {
		t.Errorf("expected 4 keys, got %d", len(merged))
	}
}

func TestMergeArgs_Shallow(t *testing.T) {
	caller := core.Metadata{"changes": map[string]any{"theme": "blue", "school": 1}}
	planner := core.Metadata{"changes": map[string]any{"theme": "green"}}

	merged := core.MergeArgs(planner, caller)

	want := map[string]any{"theme": "green"}
	if diff := cmp.Diff(want, merged["changes"]); diff != "" {
		t.Errorf("nested maps must not be merged (-want +got):\n%s", diff)
	}
}

func TestMergeArgs_DoesNotMutateInputs(t *testing.T) {
	caller := core.Metadata{"a": 1}
	merged := core.MergeArgs(core.Metadata{"b": 2}, caller)
	merged["c"] = 3

	if len(caller) != 1 {
		t.Errorf("caller context mutated: %v", caller)
	}
}

func TestMergeArgs_NilMaps(t *testing.T) {
	merged := core.MergeArgs(nil, nil)
	if merged == nil || len(merged) != 0 {
		t.Errorf("expected empty non-nil map, got %#v", merged)
	}
}

func TestResolveSite(t *testing.T) {
	t.Run("scaffold needs no site", func(t *testing.T) {
		if err := core.ResolveSite(core.ActionScaffoldSite, core.Metadata{}, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("merged slug kept", func(t *testing.T) {
		merged := core.Metadata{"repo_slug": "al-noor"}
		if err := core.ResolveSite(core.ActionSetEid, merged, "other"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if merged["repo_slug"] != "al-noor" {
			t.Errorf("repo_slug overwritten: %v", merged["repo_slug"])
		}
	})

	t.Run("explicit fallback", func(t *testing.T) {
		merged := core.Metadata{"repo_slug": ""}
		if err := core.ResolveSite(core.ActionSetEid, merged, "al-huda"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if merged["repo_slug"] != "al-huda" {
			t.Errorf("fallback not applied: %v", merged["repo_slug"])
		}
	})

	t.Run("missing", func(t *testing.T) {
		err := core.ResolveSite(core.ActionAddAnnouncement, core.Metadata{}, "")
		if !errors.Is(err, core.ErrMissingSiteIdentifier) {
			t.Fatalf("expected ErrMissingSiteIdentifier, got %v", err)
		}
	})
}
