// Package metrics collects request-level instrumentation for the
// completion endpoint. Collectors are registered on a private registry
// so embedding applications can expose or ignore them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the prometheus collectors fed by the response client.
type Recorder struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration prometheus.Histogram
	tokens   *prometheus.CounterVec
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "completion_requests_total",
			Help:      "Completion endpoint round-trips by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parley",
			Name:      "completion_request_duration_seconds",
			Help:      "Completion endpoint round-trip latency.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "completion_tokens_total",
			Help:      "Token usage reported by the completion endpoint.",
		}, []string{"direction"}),
	}

	r.registry.MustRegister(r.requests, r.duration, r.tokens)
	return r
}

// ObserveRequest records one round-trip outcome and its latency.
// Outcome is one of "ok", "http_error", "malformed", "stream_error",
// "transport_error".
func (r *Recorder) ObserveRequest(outcome string, seconds float64) {
	r.requests.WithLabelValues(outcome).Inc()
	r.duration.Observe(seconds)
}

// AddTokens records token usage from a response.
func (r *Recorder) AddTokens(input, output int) {
	if input > 0 {
		r.tokens.WithLabelValues("input").Add(float64(input))
	}
	if output > 0 {
		r.tokens.WithLabelValues("output").Add(float64(output))
	}
}

// Registry returns the registry holding the collectors, for exposition.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
