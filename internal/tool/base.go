package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"parley/internal/responses"
)

// Validator is implemented by request types that support validation.
type Validator interface {
	Validate() error
}

// Executor is the typed handler behind a Base tool.
type Executor[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Base provides common tool plumbing using generics: argument decoding
// via mapstructure, optional request validation, and response
// marshaling. Connector tools wrap their typed handlers in it instead
// of repeating this per tool.
type Base[Req, Resp any] struct {
	name        string
	description string
	parameters  map[string]any
	executor    Executor[Req, Resp]
}

// NewBase creates a tool from a typed handler.
func NewBase[Req, Resp any](
	name string,
	description string,
	parameters map[string]any,
	executor Executor[Req, Resp],
) *Base[Req, Resp] {
	return &Base[Req, Resp]{
		name:        name,
		description: description,
		parameters:  parameters,
		executor:    executor,
	}
}

// Name implements Tool.
func (b *Base[Req, Resp]) Name() string {
	return b.name
}

// Description implements Tool.
func (b *Base[Req, Resp]) Description() string {
	return b.description
}

// Definition implements Tool.
func (b *Base[Req, Resp]) Definition() responses.ToolDefinition {
	return responses.FunctionTool(b.name, b.description, b.parameters)
}

// Execute implements Tool. It decodes args into the typed request,
// validates it when the type implements Validator, runs the handler
// and marshals the typed response to JSON.
func (b *Base[Req, Resp]) Execute(ctx context.Context, args map[string]any) (string, error) {
	var req Req

	if err := mapstructure.Decode(args, &req); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return "", fmt.Errorf("%s validation failed: %w", b.name, err)
		}
	}

	resp, err := b.executor(ctx, req)
	if err != nil {
		return "", err
	}

	bytes, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}

	return string(bytes), nil
}
