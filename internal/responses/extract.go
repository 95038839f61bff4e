package responses

import "strings"

// ExtractText returns the response's final text. A top-level
// output_text field wins; otherwise every text segment of every
// message item is concatenated in output order.
func ExtractText(resp *Response) string {
	if resp == nil {
		return ""
	}
	if resp.OutputText != "" {
		return resp.OutputText
	}

	var b strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// ExtractFirstToolCall scans output items in order and returns the
// first tool invocation, or nil when the response contains none.
// Flat function_call items (newer shape) are preferred over tool_call
// parts embedded in message content (older shape).
func ExtractFirstToolCall(resp *Response) *ToolCall {
	if resp == nil {
		return nil
	}

	for _, item := range resp.Output {
		if item.Type == "function_call" {
			return &ToolCall{
				ID:        item.CallID,
				Name:      item.Name,
				Arguments: item.Arguments,
			}
		}
	}

	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "tool_call" {
				return &ToolCall{
					ID:        part.ID,
					Name:      part.Name,
					Arguments: part.Arguments,
				}
			}
		}
	}

	return nil
}
