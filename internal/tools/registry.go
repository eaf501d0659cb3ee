package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coursepilot/coursepilot/internal/provider"
)

// Registry dispatches tool calls by name and buffers the sources the
// tools report. A registry is scoped to a single query: the
// orchestrator builds a fresh one per call so sources never leak
// between concurrent queries.
type Registry struct {
	mu      sync.Mutex
	tools   map[string]Tool
	order   []string
	sources []Source
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{tools: make(map[string]Tool), logger: logger}
}

// Register adds a tool. The name comes from the tool's own definition;
// duplicate names are an error.
func (r *Registry) Register(t Tool) error {
	def := t.Definition()
	if def.Name == "" {
		return fmt.Errorf("tool definition has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %q already registered", def.Name)
	}
	r.tools[def.Name] = t
	r.order = append(r.order, def.Name)
	return nil
}

// Definitions returns all tool definitions in registration order.
func (r *Registry) Definitions() []provider.ToolDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()
	defs := make([]provider.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute runs the named tool and buffers its sources. Unknown names
// and tool failures come back as output text so the model can recover
// instead of the call aborting.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) string {
	r.mu.Lock()
	t, ok := r.tools[name]
	r.mu.Unlock()
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name)
	}

	out, sources, err := t.Execute(ctx, args)
	if err != nil {
		r.logger.Warn("tool execution failed", "tool", name, "error", err)
		return fmt.Sprintf("Tool '%s' failed: %v", name, err)
	}
	if len(sources) > 0 {
		r.mu.Lock()
		r.sources = append(r.sources, sources...)
		r.mu.Unlock()
	}
	return out
}

// DrainSources returns the buffered sources and clears the buffer in
// one step, so every source is delivered exactly once.
func (r *Registry) DrainSources() []Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	sources := r.sources
	r.sources = nil
	return sources
}
