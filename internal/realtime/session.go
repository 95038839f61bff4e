// Package realtime establishes voice sessions against the realtime
// endpoint: an HTTP session-create call guarded by a fixed retry
// policy, then a websocket connection for event exchange. Audio
// capture and playback are the embedding application's concern.
package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"parley/internal/responses"
)

// DefaultBaseURL is the production endpoint root.
const DefaultBaseURL = "https://api.openai.com/v1"

// backoffDelays are the waits between session-create attempts. The
// policy retries on HTTP 503 only; everything else surfaces
// immediately. It is stateless across calls.
var backoffDelays = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

const maxAttempts = 3

// SessionConfig selects the model and voice for a session.
type SessionConfig struct {
	Model string `json:"model"`
	Voice string `json:"voice,omitempty"`
}

// Session is a provisioned realtime session.
type Session struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

// SessionClient provisions realtime sessions.
type SessionClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// SessionOption configures a SessionClient.
type SessionOption func(*SessionClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) SessionOption {
	return func(c *SessionClient) { c.httpClient = hc }
}

// WithBaseURL overrides the endpoint root.
func WithBaseURL(u string) SessionOption {
	return func(c *SessionClient) { c.baseURL = u }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(c *SessionClient) { c.logger = l }
}

// withSleep overrides the backoff sleeper (tests).
func withSleep(fn func(ctx context.Context, d time.Duration) error) SessionOption {
	return func(c *SessionClient) { c.sleep = fn }
}

// NewSessionClient creates a SessionClient.
func NewSessionClient(opts ...SessionOption) *SessionClient {
	c := &SessionClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		logger:     slog.Default(),
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create provisions a session. HTTP 503 is retried up to 3 attempts
// with fixed 1s/3s/5s backoff; any other failure is surfaced to the
// caller immediately.
func (c *SessionClient) Create(ctx context.Context, apiKey string, cfg SessionConfig) (*Session, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		session, err := c.create(ctx, apiKey, cfg)
		if err == nil {
			return session, nil
		}

		var httpErr *responses.HTTPError
		if !isServiceUnavailable(err, &httpErr) {
			return nil, err
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		delay := backoffDelays[attempt-1]
		c.logger.Warn("realtime session unavailable, retrying",
			"attempt", attempt,
			"delay", delay,
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *SessionClient) create(ctx context.Context, apiKey string, cfg SessionConfig) (*Session, error) {
	body, err := json.Marshal(&cfg)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/realtime/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("OpenAI-Beta", "realtime=v1")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &responses.HTTPError{Status: httpResp.StatusCode, Body: string(respBody)}
	}

	var session Session
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, &responses.MalformedResponseError{Cause: err}
	}
	return &session, nil
}

func isServiceUnavailable(err error, target **responses.HTTPError) bool {
	httpErr, ok := err.(*responses.HTTPError)
	if !ok || httpErr.Status != http.StatusServiceUnavailable {
		return false
	}
	*target = httpErr
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
