// Package tool defines the capability contract between the
// conversation loop and connector implementations, plus the registry
// that dispatches model-requested calls.
package tool

import (
	"context"

	"parley/internal/responses"
)

// Tool represents a capability the model can invoke. Implementations
// must be stateless and safe for concurrent use.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Definition returns the schema advertised to the model.
	Definition() responses.ToolDefinition

	// Execute runs the tool with the decoded arguments.
	Execute(ctx context.Context, args map[string]any) (string, error)
}
