package responses

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// streamEvent is the subset of SSE payload fields the client consumes.
type streamEvent struct {
	Type     string    `json:"type"`
	Delta    string    `json:"delta"`
	Response *Response `json:"response"`
}

// SendStreaming performs one exchange over an SSE stream. onDelta is
// invoked synchronously for every text delta, in arrival order; deltas
// are also accumulated so a final Response can be synthesized when the
// terminal event does not carry one. The stream is closed on every
// return path.
//
// Transport failures mid-stream surface as *StreamError; callers are
// expected to fall back to Send.
func (c *Client) SendStreaming(ctx context.Context, apiKey string, req *Request, onDelta func(string)) (*Response, error) {
	start := time.Now()

	httpResp, err := c.post(ctx, apiKey, req, true)
	if err != nil {
		c.observe("transport_error", start, nil)
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		body, _ := io.ReadAll(httpResp.Body)
		c.observe("http_error", start, nil)
		return nil, &HTTPError{Status: httpResp.StatusCode, Body: string(body)}
	}

	var (
		buf   strings.Builder
		final *Response
	)

	br := bufio.NewReader(httpResp.Body)
loop:
	for {
		block, err := readSSEBlock(br)
		if err != nil {
			if err == io.EOF {
				break
			}
			c.observe("stream_error", start, nil)
			return nil, &StreamError{Cause: err}
		}

		data := extractSSEData(block)
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			break
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			// Unknown event payloads are skipped, not fatal.
			continue
		}

		switch {
		case ev.Delta != "" && isTextDelta(ev.Type):
			buf.WriteString(ev.Delta)
			onDelta(ev.Delta)

		case isTerminal(ev.Type):
			if ev.Response != nil {
				final = ev.Response
			}
			break loop
		}
	}

	if final == nil {
		final = c.synthesize(req.Model, buf.String())
	}

	c.observe("ok", start, final.Usage)
	c.logResponse(final, start)
	return final, nil
}

// isTextDelta reports whether an event's delta field is assistant text.
// Bare delta events (no type) are treated as text; argument deltas for
// function calls are not.
func isTextDelta(eventType string) bool {
	return eventType == "" || eventType == "response.output_text.delta"
}

func isTerminal(eventType string) bool {
	switch eventType {
	case "response.done", "response.completed", "done":
		return true
	}
	return false
}

// synthesize wraps accumulated text in a minimal Response when the
// stream ended without a terminal response object.
func (c *Client) synthesize(model, text string) *Response {
	return &Response{
		ID:        "resp_" + uuid.NewString(),
		Object:    "response",
		CreatedAt: time.Now().Unix(),
		Model:     model,
		Output: []OutputItem{{
			ID:     "msg_" + uuid.NewString(),
			Type:   "message",
			Status: "completed",
			Role:   "assistant",
			Content: []ContentPart{{
				Type: "output_text",
				Text: text,
			}},
		}},
		OutputText: text,
	}
}

// readSSEBlock reads one event block (lines up to a blank separator).
func readSSEBlock(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF && b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		if line == "\n" || line == "\r\n" {
			return b.String(), nil
		}
		b.WriteString(line)
	}
}

// extractSSEData joins the data: lines of an event block.
func extractSSEData(block string) string {
	var dataLines []string
	for _, ln := range strings.Split(block, "\n") {
		ln = strings.TrimRight(ln, "\r")
		if strings.HasPrefix(ln, "data:") {
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(ln, "data:")))
		}
	}
	return strings.TrimSpace(strings.Join(dataLines, "\n"))
}
