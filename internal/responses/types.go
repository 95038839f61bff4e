package responses

// Request is the body sent to POST /v1/responses. A new Request is built
// for every turn; requests are never mutated after being sent.
type Request struct {
	Model string `json:"model"`

	// Input is either a plain string (first turn) or a []InputItem
	// carrying tool results (subsequent turns).
	Input any `json:"input"`

	Instructions       string           `json:"instructions,omitempty"`
	PreviousResponseID string           `json:"previous_response_id,omitempty"`
	Tools              []ToolDefinition `json:"tools,omitempty"`
	ToolChoice         string           `json:"tool_choice,omitempty"`
	Stream             bool             `json:"stream,omitempty"`
}

// InputItem is a structured input block. The only block the client
// produces is the tool-result turn; it carries no role field.
type InputItem struct {
	Type   string `json:"type"`
	CallID string `json:"call_id,omitempty"`
	Output string `json:"output,omitempty"`
}

// FunctionCallOutput builds the tool-result input block for a follow-up turn.
func FunctionCallOutput(callID, output string) []InputItem {
	return []InputItem{{
		Type:   "function_call_output",
		CallID: callID,
		Output: output,
	}}
}

// ToolDefinition is a function tool exposed to the model.
// Parameters holds a JSON Schema object; it is kept as a plain map so
// externally supplied schemas (e.g. from an MCP server) pass through
// unmodified.
type ToolDefinition struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// FunctionTool builds a ToolDefinition with type "function".
func FunctionTool(name, description string, parameters map[string]any) ToolDefinition {
	return ToolDefinition{
		Type:        "function",
		Name:        name,
		Description: description,
		Parameters:  parameters,
	}
}

// ObjectSchema builds a JSON Schema object with the given properties.
func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Response is one completed round-trip against the endpoint. It is
// immutable once received.
type Response struct {
	ID         string       `json:"id"`
	Object     string       `json:"object,omitempty"`
	CreatedAt  int64        `json:"created_at,omitempty"`
	Model      string       `json:"model,omitempty"`
	Output     []OutputItem `json:"output"`
	OutputText string       `json:"output_text,omitempty"`
	Usage      *Usage       `json:"usage,omitempty"`
}

// OutputItem is one entry of a response's ordered output sequence.
// Type is "message", "function_call" or "reasoning"; the function_call
// fields are only set for the newer flat shape.
type OutputItem struct {
	ID      string        `json:"id,omitempty"`
	Type    string        `json:"type"`
	Status  string        `json:"status,omitempty"`
	Role    string        `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`

	// function_call shape
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ContentPart is a segment inside a message item. Older responses embed
// tool calls here as parts of type "tool_call".
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// legacy embedded tool_call shape
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// Usage holds the token counts reported by the endpoint.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ToolCall is a model-requested function invocation normalized from
// either response shape. It only exists transiently during a turn.
type ToolCall struct {
	// ID is the call correlation token (call_id on the wire).
	ID string

	// Name of the function the model wants invoked.
	Name string

	// Arguments is the raw JSON text of the call arguments.
	Arguments string
}
