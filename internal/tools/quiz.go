package tools

import (
	"context"
	"encoding/json"
)

// defaultQuizFocus is used when the model does not name a focus area.
const defaultQuizFocus = "grammar"

// QuizTool acknowledges a quiz request so the client can launch one after
// the conversation. The lesson defaults to the session's scenario.
type QuizTool struct{}

func (t *QuizTool) Name() string { return "trigger_quiz" }

func (t *QuizTool) Description() string {
	return "Queue a follow-up quiz for the current lesson and focus area."
}

func (t *QuizTool) Execute(ctx context.Context, params json.RawMessage) Result {
	var args struct {
		LessonID  string `json:"lesson_id"`
		FocusArea string `json:"focus_area"`
	}
	_ = json.Unmarshal(params, &args)

	if args.LessonID == "" {
		args.LessonID = ScenarioIDFrom(ctx)
	}
	if args.FocusArea == "" {
		args.FocusArea = defaultQuizFocus
	}
	return Success(map[string]any{
		"lesson_id":  args.LessonID,
		"focus_area": args.FocusArea,
	})
}
