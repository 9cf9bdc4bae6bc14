// Package tools implements the fixed set of tutor tools the upstream model
// can call mid-conversation, and the registry that dispatches to them.
package tools

import (
	"context"
	"encoding/json"
)

// Tool executes a named function against parsed arguments. Tools are pure:
// no I/O, no shared mutable state, safe for concurrent use across sessions.
type Tool interface {
	// Name returns the function name the upstream model calls.
	Name() string

	// Description returns what the tool does, for operator inspection.
	Description() string

	// Execute runs the tool with the given JSON parameters.
	Execute(ctx context.Context, params json.RawMessage) Result
}

// Result is the structured outcome of a tool invocation: a success flag
// plus tool-specific fields. It is serialized to a string before being
// sent upstream as the call's output.
type Result map[string]any

// Success builds a successful result carrying the given fields.
func Success(fields map[string]any) Result {
	result := Result{"success": true}
	for k, v := range fields {
		result[k] = v
	}
	return result
}

// Failure builds a failed result with a descriptive message. Failures are
// normal outcomes fed back into the conversation, never fatal errors.
func Failure(message string) Result {
	return Result{"success": false, "error": message}
}

// Encode serializes the result for the upstream call-output payload.
func (r Result) Encode() string {
	data, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"error":"unencodable tool result"}`
	}
	return string(data)
}

// OK reports whether the result carries a true success flag.
func (r Result) OK() bool {
	ok, _ := r["success"].(bool)
	return ok
}

type contextKey string

const scenarioIDKey contextKey = "scenario_id"

// WithScenarioID attaches the session's scenario id to the context so
// tools can default arguments from it.
func WithScenarioID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, scenarioIDKey, id)
}

// ScenarioIDFrom returns the scenario id attached to the context, if any.
func ScenarioIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(scenarioIDKey).(string)
	return id
}
