// Package bridge implements the per-conversation session actor that relays
// realtime events between one client WebSocket and one upstream AI
// WebSocket, filtering client commands and reassembling streamed tool
// calls.
package bridge

import (
	"encoding/json"

	"github.com/ThomasRogersF/conversational-test-app-realtime-ver/internal/scenarios"
)

// Upstream event types the bridge inspects. Everything else is forwarded
// as opaque cargo.
const (
	eventFunctionCallDelta = "response.function_call_arguments.delta"
	eventFunctionCallDone  = "response.function_call_arguments.done"
)

// envelope is the minimal view of a relayed event: the discriminant plus
// the function-call side-channel fields. Events keep arbitrary additional
// fields; the bridge forwards the original raw bytes, never this struct.
type envelope struct {
	Type      string `json:"type"`
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Delta     string `json:"delta"`
	Arguments string `json:"arguments"`
}

func parseEnvelope(raw []byte) (*envelope, error) {
	var ev envelope
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// errorEvent builds the synthetic error sent to the client on whitelist
// violations and upstream connect failures.
func errorEvent(message string) []byte {
	data, _ := json.Marshal(map[string]any{
		"type": "error",
		"error": map[string]any{
			"message": message,
		},
	})
	return data
}

// sessionUpdateEvent carries the upstream session configuration: merged
// instructions, server-VAD turn detection, audio formats, and the
// scenario's tool declarations.
func sessionUpdateEvent(instructions, voice string, tools []scenarios.ToolSchema) ([]byte, error) {
	if tools == nil {
		tools = []scenarios.ToolSchema{}
	}
	return json.Marshal(map[string]any{
		"type": "session.update",
		"session": map[string]any{
			"instructions": instructions,
			"voice":        voice,
			"modalities":   []string{"audio", "text"},
			"turn_detection": map[string]any{
				"type": "server_vad",
			},
			"input_audio_format":  "pcm16",
			"output_audio_format": "pcm16",
			"tools":               tools,
			"tool_choice":         "auto",
		},
	})
}

// assistantMessageEvent injects the scenario's opening line as an
// assistant conversation item.
func assistantMessageEvent(text string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": text},
			},
		},
	})
}

// functionCallOutputEvent feeds a tool result back into the conversation
// as the output of the given call.
func functionCallOutputEvent(callID, output string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  output,
		},
	})
}

// responseCreateEvent asks upstream to produce the next response, used
// after the opening line and after every tool output.
func responseCreateEvent() []byte {
	return []byte(`{"type":"response.create"}`)
}
