// Package tools implements the analytic tool collaborators available to
// roster agents, and the read-only registry the engine dispatches through.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Result represents the outcome of a tool execution.
type Result struct {
	Content string
	IsError bool
}

// Tool is one callable collaborator. Implementations must perform their
// own argument coercion (the self-defending layer); they never trust that
// the caller validated types.
type Tool interface {
	// Name is the identifier agents call the tool by.
	Name() string
	// Description is surfaced to the decision engine as the tool schema
	// description.
	Description() string
	// Schema returns the JSON-schema property map for the tool's input.
	Schema() map[string]interface{}
	// Call executes the tool with a raw argument bundle.
	Call(ctx context.Context, input json.RawMessage) Result
}

// Registry holds the full roster of tools. It is read-only configuration
// shared across turns: built once at startup, never mutated afterwards.
// Per-turn restriction happens in the caller via the holstered allowed
// set, not by mutating the registry.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a registry over the given tools.
func NewRegistry(tools ...Tool) *Registry {
	m := make(map[string]Tool, len(tools))
	for _, t := range tools {
		m[t.Name()] = t
	}
	return &Registry{tools: m}
}

// Names returns all registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named tool, or nil if unknown.
func (r *Registry) Get(name string) Tool {
	return r.tools[name]
}

// Execute dispatches a call to the named tool, restricted to the allowed
// set computed by the holster for this invocation. A call outside the
// allowed set is refused, not executed.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage, allowed []string) Result {
	permitted := false
	for _, a := range allowed {
		if a == name {
			permitted = true
			break
		}
	}
	if !permitted {
		return Result{Content: fmt.Sprintf("Tool %q is not available for this task", name), IsError: true}
	}

	tool := r.tools[name]
	if tool == nil {
		return Result{Content: fmt.Sprintf("Unknown tool: %s", name), IsError: true}
	}

	return tool.Call(ctx, input)
}
