package tools

import (
	"context"
	"encoding/json"
	"testing"
)

func TestQuizToolEchoesArguments(t *testing.T) {
	tool := &QuizTool{}
	result := tool.Execute(context.Background(), json.RawMessage(`{"lesson_id":"doctor-visit","focus_area":"vocabulary"}`))

	if !result.OK() {
		t.Fatalf("expected success, got %v", result)
	}
	if result["lesson_id"] != "doctor-visit" {
		t.Errorf("lesson_id = %v, want doctor-visit", result["lesson_id"])
	}
	if result["focus_area"] != "vocabulary" {
		t.Errorf("focus_area = %v, want vocabulary", result["focus_area"])
	}
}

func TestQuizToolDefaults(t *testing.T) {
	tool := &QuizTool{}
	ctx := WithScenarioID(context.Background(), "cafe-ordering")
	result := tool.Execute(ctx, json.RawMessage(`{}`))

	if result["lesson_id"] != "cafe-ordering" {
		t.Errorf("lesson_id = %v, want scenario id default", result["lesson_id"])
	}
	if result["focus_area"] != defaultQuizFocus {
		t.Errorf("focus_area = %v, want %q", result["focus_area"], defaultQuizFocus)
	}
}
