package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ValidatePlan is the trust boundary between planner output and the rest of
// the pipeline. It accepts raw text, optionally wrapped in a markdown code
// fence, and returns a Plan whose action is in AllowedActions.
func ValidatePlan(raw string) (Plan, error) {
	text := stripCodeFences(strings.TrimSpace(raw))
	if text == "" {
		return Plan{}, fmt.Errorf("%w: empty planner output", ErrMalformedPlan)
	}

	var envelope map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&envelope); err != nil {
		return Plan{}, fmt.Errorf("%w: planner did not return a JSON object: %v", ErrMalformedPlan, err)
	}
	if dec.More() {
		return Plan{}, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedPlan)
	}
	if envelope == nil {
		return Plan{}, fmt.Errorf("%w: planner returned null", ErrMalformedPlan)
	}

	rawAction, ok := envelope["action"]
	if !ok {
		return Plan{}, fmt.Errorf("%w: action", ErrMissingField)
	}
	rawArgs, ok := envelope["args"]
	if !ok {
		return Plan{}, fmt.Errorf("%w: args", ErrMissingField)
	}

	var action string
	if err := json.Unmarshal(rawAction, &action); err != nil {
		return Plan{}, fmt.Errorf("%w: %s", ErrUnknownAction, compact(rawAction))
	}
	if !Action(action).Valid() {
		return Plan{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	var args Metadata
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return Plan{}, fmt.Errorf("%w: args must be an object", ErrMalformedPlan)
	}
	if args == nil {
		// "args": null
		args = Metadata{}
	}

	return Plan{Action: Action(action), Args: args}, nil
}

// stripCodeFences removes a surrounding ``` or ```json fence.
func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string ("json").
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
