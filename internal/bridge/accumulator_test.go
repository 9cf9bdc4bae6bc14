package bridge

import "testing"

func TestAccumulatorConcatenatesFragmentsInOrder(t *testing.T) {
	acc := newCallAccumulator()
	acc.appendFragment("call_1", "grade_conversation", `{"gram`)
	acc.appendFragment("call_1", "", `mar":8,`)
	acc.appendFragment("call_1", "", `"fluency":9}`)

	name, arguments := acc.complete("call_1", "", "")
	if name != "grade_conversation" {
		t.Errorf("name = %q, want grade_conversation", name)
	}
	if want := `{"grammar":8,"fluency":9}`; arguments != want {
		t.Errorf("arguments = %q, want %q", arguments, want)
	}
}

func TestAccumulatorCompletionConsumesEntry(t *testing.T) {
	acc := newCallAccumulator()
	acc.appendFragment("call_1", "trigger_quiz", `{"a":1}`)
	acc.complete("call_1", "", "")

	if acc.pending() != 0 {
		t.Fatalf("entry survived completion, pending = %d", acc.pending())
	}

	// Reusing the id starts a fresh entry with no stale fragments.
	acc.appendFragment("call_1", "", `{"b":2}`)
	name, arguments := acc.complete("call_1", "grade_conversation", "")
	if arguments != `{"b":2}` {
		t.Errorf("arguments = %q, stale fragments reused", arguments)
	}
	if name != "grade_conversation" {
		t.Errorf("name = %q, want fallback to completion event name", name)
	}
}

func TestAccumulatorCompletionWithoutFragments(t *testing.T) {
	tests := []struct {
		name           string
		eventArguments string
		wantArguments  string
	}{
		{"uses completion event arguments", `{"grammar":5}`, `{"grammar":5}`},
		{"defaults to empty object", "", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newCallAccumulator()
			_, arguments := acc.complete("never_seen", "trigger_quiz", tt.eventArguments)
			if arguments != tt.wantArguments {
				t.Errorf("arguments = %q, want %q", arguments, tt.wantArguments)
			}
		})
	}
}

// An existing entry's concatenated fragments win even when they are
// empty; the completion event's own arguments apply only when no entry
// was ever created for the call id.
func TestAccumulatorEmptyFragmentsBeatCompletionArguments(t *testing.T) {
	acc := newCallAccumulator()
	acc.appendFragment("call_1", "grade_conversation", "")

	_, arguments := acc.complete("call_1", "", `{"grammar":9}`)
	if arguments != "" {
		t.Errorf("arguments = %q, want the empty accumulated string", arguments)
	}
	if acc.pending() != 0 {
		t.Errorf("entry survived completion, pending = %d", acc.pending())
	}
}

func TestAccumulatorNameMayArriveLate(t *testing.T) {
	acc := newCallAccumulator()
	acc.appendFragment("call_1", "", `{"x":`)
	acc.appendFragment("call_1", "trigger_quiz", `1}`)

	name, _ := acc.complete("call_1", "", "")
	if name != "trigger_quiz" {
		t.Errorf("name = %q, want trigger_quiz recorded from a later fragment", name)
	}
}

func TestAccumulatorTracksCallsIndependently(t *testing.T) {
	acc := newCallAccumulator()
	acc.appendFragment("call_a", "grade_conversation", `{"a"`)
	acc.appendFragment("call_b", "trigger_quiz", `{"b"`)
	acc.appendFragment("call_a", "", `:1}`)
	acc.appendFragment("call_b", "", `:2}`)

	_, argsA := acc.complete("call_a", "", "")
	_, argsB := acc.complete("call_b", "", "")
	if argsA != `{"a":1}` || argsB != `{"b":2}` {
		t.Errorf("interleaved calls mixed fragments: a=%q b=%q", argsA, argsB)
	}
}

func TestAccumulatorReset(t *testing.T) {
	acc := newCallAccumulator()
	acc.appendFragment("call_1", "", `{"x":1}`)
	acc.reset()
	if acc.pending() != 0 {
		t.Errorf("pending = %d after reset, want 0", acc.pending())
	}
}
