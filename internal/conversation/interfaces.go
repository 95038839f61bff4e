package conversation

import (
	"context"

	"parley/internal/responses"
)

// Sender performs one request/response exchange. The runner is
// parameterized on it so the streaming and non-streaming paths share a
// single loop.
type Sender interface {
	Send(ctx context.Context, apiKey string, req *responses.Request) (*responses.Response, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, apiKey string, req *responses.Request) (*responses.Response, error)

func (f SenderFunc) Send(ctx context.Context, apiKey string, req *responses.Request) (*responses.Response, error) {
	return f(ctx, apiKey, req)
}

// ToolExecutor supplies tool schemas and dispatches tool calls.
// Execute never fails from the loop's perspective: implementations
// convert internal errors into textual results.
type ToolExecutor interface {
	Definitions() []responses.ToolDefinition
	Execute(ctx context.Context, name string, args map[string]any) string
}
