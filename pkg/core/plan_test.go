package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/minbar/pkg/core"
)

func TestValidatePlan(t *testing.T) {
	plan, err := core.ValidatePlan(`{"action":"set_eid","args":{"visible":true}}`)
	require.NoError(t, err)
	assert.Equal(t, core.ActionSetEid, plan.Action)
	assert.Equal(t, true, plan.Args["visible"])
}

func TestValidatePlan_CodeFence(t *testing.T) {
	raw := "```json\n{\"action\": \"update_config\", \"args\": {\"changes\": {\"theme\": \"green\"}}}\n```"
	plan, err := core.ValidatePlan(raw)
	require.NoError(t, err)
	assert.Equal(t, core.ActionUpdateConfig, plan.Action)
}

func TestValidatePlan_NullArgs(t *testing.T) {
	plan, err := core.ValidatePlan(`{"action":"scaffold_site","args":null}`)
	require.NoError(t, err)
	assert.NotNil(t, plan.Args)
}

func TestValidatePlan_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "   ", core.ErrMalformedPlan},
		{"prose", "Sure! I will add that announcement.", core.ErrMalformedPlan},
		{"array", `[{"action":"set_eid","args":{}}]`, core.ErrMalformedPlan},
		{"null", `null`, core.ErrMalformedPlan},
		{"trailing", `{"action":"set_eid","args":{}} and more`, core.ErrMalformedPlan},
		{"args not object", `{"action":"set_eid","args":[1,2]}`, core.ErrMalformedPlan},
		{"missing action", `{"args":{}}`, core.ErrMissingField},
		{"missing args", `{"action":"set_eid"}`, core.ErrMissingField},
		{"unknown action", `{"action":"delete_site","args":{}}`, core.ErrUnknownAction},
		{"non-string action", `{"action":42,"args":{}}`, core.ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.ValidatePlan(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, core.KindNone, core.KindOf(nil))
	assert.Equal(t, core.KindAlreadyExists, core.KindOf(core.ErrAlreadyExists))
	assert.True(t, errors.Is(core.ErrAlreadyExists, core.ErrConflict))
	assert.Equal(t, core.KindConflict, core.KindOf(core.ErrConflict))
	assert.Equal(t, core.KindInternal, core.KindOf(errors.New("boom")))
}
