package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Registry manages the available tools with thread-safe registration and
// lookup. The set is fixed at startup; sessions only read it.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry pre-populated with the built-in tutor
// tools.
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	r.Register(&GradeTool{})
	r.Register(&QuizTool{})
	return r
}

// Register adds a tool by its name, replacing any existing tool with the
// same name.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name and whether it was found.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns the registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Execute dispatches by exact name match. An unknown name yields a normal
// failure result so the conversation can continue past it.
func (r *Registry) Execute(ctx context.Context, name string, params json.RawMessage) Result {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return Failure(fmt.Sprintf("unknown tool: %s", name))
	}
	return tool.Execute(ctx, params)
}
