// Package planner provides core.Planner implementations backed by hosted
// language models, plus a static planner for tests and scripted use.
//
// Planners only produce text. Nothing they return is trusted until
// core.ValidatePlan accepts it.
package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/minbar/pkg/core"
)

// Defaults shared by the hosted planners.
const (
	DefaultModel     = "gpt-4o"
	DefaultMaxTokens = 400
)

// SystemPrompt instructs the model to emit exactly one plan envelope.
var SystemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	names := make([]string, len(core.AllowedActions))
	for i, a := range core.AllowedActions {
		names[i] = string(a)
	}
	var b strings.Builder
	b.WriteString("You are the site manager. Never run tools yourself.\n")
	b.WriteString(`Output strict JSON ONLY with the shape: {"action": <one of the allowed actions>, "args": {...}}` + "\n")
	b.WriteString("Choose the minimal single step that advances the instruction. If multiple things are asked, pick the first only.\n")
	fmt.Fprintf(&b, "Allowed actions: %s.\n", strings.Join(names, ", "))
	b.WriteString("Args must be as compact as possible and only include necessary fields. Dates: use ISO8601 or YYYY-MM-DD format when appropriate.\n")
	return b.String()
}

type userMessage struct {
	Instruction string        `json:"instruction"`
	Context     core.Metadata `json:"context"`
}

// UserMessage encodes the instruction and caller context as the user turn.
func UserMessage(instruction string, callerContext core.Metadata) (string, error) {
	if callerContext == nil {
		callerContext = core.Metadata{}
	}
	b, err := json.Marshal(userMessage{Instruction: instruction, Context: callerContext})
	if err != nil {
		return "", fmt.Errorf("%w: encode context: %v", core.ErrInvalidArgument, err)
	}
	return string(b), nil
}
