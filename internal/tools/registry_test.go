package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestRegistryDispatchesByName(t *testing.T) {
	registry := NewRegistry()
	result := registry.Execute(context.Background(), "grade_conversation", json.RawMessage(`{"grammar":8,"vocabulary":7,"fluency":9}`))
	if !result.OK() {
		t.Fatalf("expected success, got %v", result)
	}
}

func TestRegistryUnknownToolIsNormalFailure(t *testing.T) {
	registry := NewRegistry()
	result := registry.Execute(context.Background(), "summon_dragon", json.RawMessage(`{}`))

	if result.OK() {
		t.Fatalf("expected failure, got %v", result)
	}
	message, _ := result["error"].(string)
	if !strings.Contains(message, "summon_dragon") {
		t.Errorf("failure message %q does not identify the unknown tool", message)
	}
}

func TestResultEncodeRoundTrips(t *testing.T) {
	result := Success(map[string]any{"average": 8.0})
	var decoded map[string]any
	if err := json.Unmarshal([]byte(result.Encode()), &decoded); err != nil {
		t.Fatalf("encode produced invalid JSON: %v", err)
	}
	if decoded["success"] != true {
		t.Errorf("success flag lost in encoding: %v", decoded)
	}
}
