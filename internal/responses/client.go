// Package responses is the client for the OpenAI Responses API. It
// performs single request/response exchanges (plain or streaming) and
// normalizes the heterogeneous response shapes for the conversation loop.
package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"parley/internal/metrics"
)

// DefaultBaseURL is the production endpoint root.
const DefaultBaseURL = "https://api.openai.com/v1"

const defaultTimeout = 120 * time.Second

// Client issues requests against the completion endpoint. It is
// stateless apart from its injected dependencies and safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	recorder   *metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the endpoint root (used by tests and proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLogger sets the structured logger used for per-call instrumentation.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRecorder attaches a metrics recorder fed on every call.
func WithRecorder(r *metrics.Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    DefaultBaseURL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs one non-streaming exchange. Non-2xx statuses fail with
// *HTTPError, undecodable bodies with *MalformedResponseError.
func (c *Client) Send(ctx context.Context, apiKey string, req *Request) (*Response, error) {
	start := time.Now()

	httpResp, err := c.post(ctx, apiKey, req, false)
	if err != nil {
		c.observe("transport_error", start, nil)
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.observe("transport_error", start, nil)
		return nil, err
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		c.observe("http_error", start, nil)
		c.logger.Warn("completion request failed",
			"status", httpResp.StatusCode,
			"body", snippet(string(body), 400),
		)
		return nil, &HTTPError{Status: httpResp.StatusCode, Body: string(body)}
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		c.observe("malformed", start, nil)
		return nil, &MalformedResponseError{Cause: err}
	}

	c.observe("ok", start, resp.Usage)
	c.logResponse(&resp, start)
	return &resp, nil
}

// post marshals req and issues the POST. The caller owns the returned
// body.
func (c *Client) post(ctx context.Context, apiKey string, req *Request, stream bool) (*http.Response, error) {
	payload := *req
	payload.Stream = stream

	body, err := json.Marshal(&payload)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("completion request",
		"model", payload.Model,
		"previous_response_id", payload.PreviousResponseID,
		"tools", len(payload.Tools),
		"stream", stream,
		"payload", snippet(string(body), 400),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	return c.httpClient.Do(httpReq)
}

func (c *Client) observe(outcome string, start time.Time, usage *Usage) {
	if c.recorder == nil {
		return
	}
	c.recorder.ObserveRequest(outcome, time.Since(start).Seconds())
	if usage != nil {
		c.recorder.AddTokens(usage.InputTokens, usage.OutputTokens)
	}
}

func (c *Client) logResponse(resp *Response, start time.Time) {
	attrs := []any{
		"id", resp.ID,
		"model", resp.Model,
		"output_items", len(resp.Output),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if resp.Usage != nil {
		attrs = append(attrs,
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens,
		)
	}
	c.logger.Debug("completion response", attrs...)
}
