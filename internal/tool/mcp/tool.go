package mcp

import (
	"context"
	"fmt"

	"parley/internal/responses"
	"parley/internal/tool"
)

// remoteTool adapts one server-advertised tool to the local Tool
// contract. Arguments pass through undecoded; the server owns the
// schema.
type remoteTool struct {
	client      *Client
	name        string
	remoteName  string
	description string
	schema      map[string]any
}

// Tools lists the server's tools and wraps each as a tool.Tool. When
// prefix is non-empty, local tool names are prefixed with it to keep
// multiple servers from colliding in one registry.
func (c *Client) Tools(ctx context.Context, prefix string) ([]tool.Tool, error) {
	remote, err := c.ListTools(ctx)
	if err != nil {
		return nil, err
	}

	tools := make([]tool.Tool, 0, len(remote))
	for _, rt := range remote {
		name := rt.Name
		if prefix != "" {
			name = fmt.Sprintf("%s_%s", prefix, rt.Name)
		}
		tools = append(tools, &remoteTool{
			client:      c,
			name:        name,
			remoteName:  rt.Name,
			description: rt.Description,
			schema:      rt.InputSchema,
		})
	}
	return tools, nil
}

// Name implements tool.Tool.
func (t *remoteTool) Name() string {
	return t.name
}

// Description implements tool.Tool.
func (t *remoteTool) Description() string {
	return t.description
}

// Definition implements tool.Tool.
func (t *remoteTool) Definition() responses.ToolDefinition {
	return responses.FunctionTool(t.name, t.description, t.schema)
}

// Execute implements tool.Tool.
func (t *remoteTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	return t.client.CallTool(ctx, t.remoteName, args)
}
