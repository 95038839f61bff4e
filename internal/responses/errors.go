package responses

import "fmt"

// HTTPError is returned when the endpoint answers with a non-2xx status.
// The loop never retries these; retry policy belongs to the caller.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("completion endpoint returned HTTP %d: %s", e.Status, snippet(e.Body, 200))
}

// MalformedResponseError is returned when a 2xx body is not valid JSON.
type MalformedResponseError struct {
	Cause error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response body: %v", e.Cause)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// StreamError is returned on SSE transport failures. The stream is
// always closed before this is surfaced.
type StreamError struct {
	Cause error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream transport error: %v", e.Cause)
}

func (e *StreamError) Unwrap() error { return e.Cause }

// snippet truncates s for logs and error messages.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
