package tool

import (
	"context"
	"fmt"
	"log/slog"

	"parley/internal/responses"
)

// Registry resolves tool names to handlers and supplies the schema
// list included in model requests. Execute never returns an error to
// the conversation loop: unknown tools and handler failures become
// textual results the model can react to.
type Registry struct {
	logger *slog.Logger
	tools  map[string]Tool
	order  []string
}

// NewRegistry creates a Registry over the given tools. Registration
// order is preserved in Definitions.
func NewRegistry(tools []Tool, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		logger: logger,
		tools:  make(map[string]Tool, len(tools)),
	}
	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; exists {
			continue
		}
		r.tools[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return r
}

// Definitions returns the schemas of all registered tools.
func (r *Registry) Definitions() []responses.ToolDefinition {
	defs := make([]responses.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute dispatches one tool call. All failure modes are converted
// into the returned string so the loop is never aborted by a tool.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (result string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool panicked", "tool", name, "panic", rec)
			result = fmt.Sprintf("Error: tool %q failed unexpectedly: %v", name, rec)
		}
	}()

	t, exists := r.tools[name]
	if !exists {
		r.logger.Warn("unknown tool requested", "tool", name)
		return fmt.Sprintf("Error: unknown tool %q", name)
	}

	r.logger.Debug("executing tool", "tool", name, "args", args)
	out, err := t.Execute(ctx, args)
	if err != nil {
		r.logger.Warn("tool failed", "tool", name, "error", err)
		return fmt.Sprintf("Error: %v", err)
	}
	return out
}
