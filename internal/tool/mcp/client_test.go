package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mcpServer routes JSON-RPC methods to canned handlers.
func mcpServer(t *testing.T, handlers map[string]func(params json.RawMessage) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JSONRPC string          `json:"jsonrpc"`
			ID      int64           `json:"id"`
			Method  string          `json:"method"`
			Params  json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)

		handler, ok := handlers[req.Method]
		require.True(t, ok, "unexpected method %q", req.Method)

		result, rpcErr := handler(req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestInitializeHandshake(t *testing.T) {
	var gotParams map[string]any
	server := mcpServer(t, map[string]func(json.RawMessage) (any, *rpcError){
		"initialize": func(params json.RawMessage) (any, *rpcError) {
			require.NoError(t, json.Unmarshal(params, &gotParams))
			return map[string]any{"protocolVersion": protocolVersion}, nil
		},
	})
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	require.NoError(t, client.Initialize(context.Background()))
	assert.Equal(t, protocolVersion, gotParams["protocolVersion"])
}

func TestListTools(t *testing.T) {
	server := mcpServer(t, map[string]func(json.RawMessage) (any, *rpcError){
		"tools/list": func(json.RawMessage) (any, *rpcError) {
			return map[string]any{
				"tools": []map[string]any{
					{
						"name":        "weather",
						"description": "current weather",
						"inputSchema": map[string]any{"type": "object"},
					},
				},
			}, nil
		},
	})
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	tools, err := client.ListTools(context.Background())

	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "weather", tools[0].Name)
	assert.Equal(t, map[string]any{"type": "object"}, tools[0].InputSchema)
}

func TestCallToolJoinsTextContent(t *testing.T) {
	server := mcpServer(t, map[string]func(json.RawMessage) (any, *rpcError){
		"tools/call": func(params json.RawMessage) (any, *rpcError) {
			var p struct {
				Name      string         `json:"name"`
				Arguments map[string]any `json:"arguments"`
			}
			require.NoError(t, json.Unmarshal(params, &p))
			assert.Equal(t, "weather", p.Name)
			assert.Equal(t, "paris", p.Arguments["city"])

			return map[string]any{
				"content": []map[string]any{
					{"type": "text", "text": "18C"},
					{"type": "image", "data": "ignored"},
					{"type": "text", "text": "cloudy"},
				},
			}, nil
		},
	})
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	out, err := client.CallTool(context.Background(), "weather", map[string]any{"city": "paris"})

	require.NoError(t, err)
	assert.Equal(t, "18C\ncloudy", out)
}

func TestCallToolIsErrorBecomesError(t *testing.T) {
	server := mcpServer(t, map[string]func(json.RawMessage) (any, *rpcError){
		"tools/call": func(json.RawMessage) (any, *rpcError) {
			return map[string]any{
				"content": []map[string]any{{"type": "text", "text": "city not found"}},
				"isError": true,
			}, nil
		},
	})
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	_, err := client.CallTool(context.Background(), "weather", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "city not found")
}

func TestCallRPCErrorSurfaces(t *testing.T) {
	server := mcpServer(t, map[string]func(json.RawMessage) (any, *rpcError){
		"tools/call": func(json.RawMessage) (any, *rpcError) {
			return nil, &rpcError{Code: -32601, Message: "method not found"}
		},
	})
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	_, err := client.CallTool(context.Background(), "weather", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not found")
}

func TestToolsWrapsRemoteToolsWithPrefix(t *testing.T) {
	server := mcpServer(t, map[string]func(json.RawMessage) (any, *rpcError){
		"tools/list": func(json.RawMessage) (any, *rpcError) {
			return map[string]any{
				"tools": []map[string]any{
					{"name": "lookup", "description": "looks things up", "inputSchema": map[string]any{"type": "object"}},
				},
			}, nil
		},
		"tools/call": func(params json.RawMessage) (any, *rpcError) {
			var p struct {
				Name string `json:"name"`
			}
			require.NoError(t, json.Unmarshal(params, &p))
			// The server sees the unprefixed name.
			if p.Name != "lookup" {
				return nil, &rpcError{Code: -32602, Message: fmt.Sprintf("unknown tool %q", p.Name)}
			}
			return map[string]any{
				"content": []map[string]any{{"type": "text", "text": "found"}},
			}, nil
		},
	})
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	tools, err := client.Tools(context.Background(), "kb")

	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "kb_lookup", tools[0].Name())
	assert.Equal(t, "kb_lookup", tools[0].Definition().Name)

	out, err := tools[0].Execute(context.Background(), map[string]any{"q": "x"})
	require.NoError(t, err)
	assert.Equal(t, "found", out)
}

func TestRequestIDsIncrement(t *testing.T) {
	var ids []int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int64 `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		ids = append(ids, req.ID)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":{}}`, req.ID)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)
	require.NoError(t, client.Initialize(context.Background()))
	_, err := client.ListTools(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, ids)
}
