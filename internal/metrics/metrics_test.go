package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequestCountsByOutcome(t *testing.T) {
	r := NewRecorder()

	r.ObserveRequest("ok", 0.25)
	r.ObserveRequest("ok", 0.5)
	r.ObserveRequest("http_error", 0.1)

	assert.Equal(t, float64(2), testutil.ToFloat64(r.requests.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.requests.WithLabelValues("http_error")))
}

func TestAddTokensByDirection(t *testing.T) {
	r := NewRecorder()

	r.AddTokens(100, 30)
	r.AddTokens(50, 0)

	assert.Equal(t, float64(150), testutil.ToFloat64(r.tokens.WithLabelValues("input")))
	assert.Equal(t, float64(30), testutil.ToFloat64(r.tokens.WithLabelValues("output")))
}

func TestRegistryGathersCollectors(t *testing.T) {
	r := NewRecorder()
	r.ObserveRequest("ok", 0.1)

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "parley_completion_requests_total")
	assert.Contains(t, names, "parley_completion_request_duration_seconds")
}
