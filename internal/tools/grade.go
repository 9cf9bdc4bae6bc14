package tools

import (
	"context"
	"encoding/json"
	"math"
)

// GradeTool computes an overall conversation grade from the model's three
// sub-scores. Absent or non-numeric sub-scores count as zero rather than
// failing the call.
type GradeTool struct{}

func (t *GradeTool) Name() string { return "grade_conversation" }

func (t *GradeTool) Description() string {
	return "Average the grammar, vocabulary, and fluency sub-scores into an overall grade."
}

func (t *GradeTool) Execute(_ context.Context, params json.RawMessage) Result {
	var args map[string]any
	if err := json.Unmarshal(params, &args); err != nil {
		args = map[string]any{}
	}

	grammar := numericArg(args, "grammar")
	vocabulary := numericArg(args, "vocabulary")
	fluency := numericArg(args, "fluency")
	average := math.Round((grammar+vocabulary+fluency)/3*100) / 100

	fields := map[string]any{
		"average":    average,
		"grammar":    grammar,
		"vocabulary": vocabulary,
		"fluency":    fluency,
	}
	if notes, ok := args["notes"].(string); ok && notes != "" {
		fields["notes"] = notes
	}
	return Success(fields)
}

func numericArg(args map[string]any, key string) float64 {
	value, ok := args[key].(float64)
	if !ok {
		return 0
	}
	return value
}
