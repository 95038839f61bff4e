package responses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextPrefersOutputText(t *testing.T) {
	resp := &Response{
		OutputText: "top-level wins",
		Output: []OutputItem{{
			Type: "message",
			Content: []ContentPart{
				{Type: "output_text", Text: "ignored"},
			},
		}},
	}

	assert.Equal(t, "top-level wins", ExtractText(resp))
}

func TestExtractTextConcatenatesMessagePartsInOrder(t *testing.T) {
	resp := &Response{
		Output: []OutputItem{
			{Type: "reasoning"},
			{
				Type: "message",
				Content: []ContentPart{
					{Type: "output_text", Text: "Hello, "},
					{Type: "output_text", Text: "world"},
				},
			},
			{
				Type: "message",
				Content: []ContentPart{
					{Type: "output_text", Text: "!"},
				},
			},
		},
	}

	assert.Equal(t, "Hello, world!", ExtractText(resp))
}

func TestExtractTextIsIdempotent(t *testing.T) {
	resp := &Response{
		Output: []OutputItem{{
			Type: "message",
			Content: []ContentPart{
				{Type: "output_text", Text: "stable"},
			},
		}},
	}

	first := ExtractText(resp)
	second := ExtractText(resp)

	assert.Equal(t, first, second)
	assert.Equal(t, "stable", second)
}

func TestExtractTextNilResponse(t *testing.T) {
	assert.Equal(t, "", ExtractText(nil))
}

func TestExtractFirstToolCallFlatShape(t *testing.T) {
	resp := &Response{
		Output: []OutputItem{
			{Type: "reasoning"},
			{
				Type:      "function_call",
				CallID:    "call_1",
				Name:      "search",
				Arguments: `{"query":"go"}`,
			},
			{
				Type:      "function_call",
				CallID:    "call_2",
				Name:      "read_file",
				Arguments: `{}`,
			},
		},
	}

	call := ExtractFirstToolCall(resp)
	require.NotNil(t, call)
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, "search", call.Name)
	assert.Equal(t, `{"query":"go"}`, call.Arguments)
}

func TestExtractFirstToolCallEmbeddedShape(t *testing.T) {
	resp := &Response{
		Output: []OutputItem{{
			Type: "message",
			Content: []ContentPart{
				{Type: "output_text", Text: "let me check"},
				{Type: "tool_call", ID: "call_9", Name: "top_stories", Arguments: `{"limit":5}`},
			},
		}},
	}

	call := ExtractFirstToolCall(resp)
	require.NotNil(t, call)
	assert.Equal(t, "call_9", call.ID)
	assert.Equal(t, "top_stories", call.Name)
}

func TestExtractFirstToolCallPrefersFlatOverEmbedded(t *testing.T) {
	resp := &Response{
		Output: []OutputItem{
			{
				Type: "message",
				Content: []ContentPart{
					{Type: "tool_call", ID: "call_embedded", Name: "older"},
				},
			},
			{
				Type:   "function_call",
				CallID: "call_flat",
				Name:   "newer",
			},
		},
	}

	call := ExtractFirstToolCall(resp)
	require.NotNil(t, call)
	assert.Equal(t, "call_flat", call.ID)
}

func TestExtractFirstToolCallNoneReturnsNil(t *testing.T) {
	resp := &Response{
		Output: []OutputItem{{
			Type: "message",
			Content: []ContentPart{
				{Type: "output_text", Text: "plain answer"},
			},
		}},
	}

	assert.Nil(t, ExtractFirstToolCall(resp))
	assert.Nil(t, ExtractFirstToolCall(nil))
}
