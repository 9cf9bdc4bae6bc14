// Package scenarios provides the immutable lesson catalog consumed by the
// session bridge. Scenarios are loaded once at process start and shared
// read-only across all sessions.
package scenarios

// Scenario is a single lesson definition: the system prompt and opening
// line driving the conversation plus the tools the model may call.
type Scenario struct {
	ID          string       `yaml:"id" json:"id"`
	Level       string       `yaml:"level" json:"level"`
	Title       string       `yaml:"title" json:"title"`
	Prompt      string       `yaml:"prompt" json:"prompt"`
	OpeningLine string       `yaml:"opening_line" json:"opening_line"`
	Tools       []ToolSchema `yaml:"tools" json:"tools"`
}

// ToolSchema is the function declaration advertised to the upstream
// realtime service. Parameters hold a JSON-Schema shaped document; the
// gateway passes it through without interpreting it.
type ToolSchema struct {
	Type        string         `yaml:"type" json:"type"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Parameters  map[string]any `yaml:"parameters" json:"parameters"`
}

// Summary is the catalog index entry exposed by the listing API.
type Summary struct {
	ID    string `json:"id"`
	Level string `json:"level"`
	Title string `json:"title"`
}
