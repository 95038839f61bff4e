package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/metrics"
)

func TestSendSuccess(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		json.NewEncoder(w).Encode(Response{
			ID:         "resp_123",
			OutputText: "hi there",
			Usage:      &Usage{InputTokens: 10, OutputTokens: 3, TotalTokens: 13},
		})
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithRecorder(metrics.NewRecorder()),
	)
	resp, err := client.Send(context.Background(), "sk-test", &Request{
		Model: "gpt-4o-mini",
		Input: "hello",
	})

	require.NoError(t, err)
	assert.Equal(t, "resp_123", resp.ID)
	assert.Equal(t, "hi there", resp.OutputText)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	assert.False(t, gotBody.Stream)
}

func TestSendHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	resp, err := client.Send(context.Background(), "sk-test", &Request{Model: "m", Input: "x"})

	require.Error(t, err)
	assert.Nil(t, resp)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)
	assert.Contains(t, httpErr.Body, "rate limited")
}

func TestSendMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.Send(context.Background(), "sk-test", &Request{Model: "m", Input: "x"})

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestSendTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.Send(context.Background(), "sk-test", &Request{Model: "m", Input: "x"})

	require.Error(t, err)
	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr), "transport failures must not masquerade as HTTP errors")
}

func TestSendForcesStreamFalse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		json.NewEncoder(w).Encode(Response{ID: "resp_1"})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.Send(context.Background(), "sk-test", &Request{Model: "m", Input: "x", Stream: true})
	require.NoError(t, err)
}
