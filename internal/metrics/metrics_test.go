package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncrementOutcome("valid", "ok")
	m.IncrementOutcome("valid", "ok")
	m.IncrementStrategy("collapse_spaces")
	m.IncrementValidation("rule", true)
	m.ObserveRegistryLatency("hit", 30*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ResolutionOutcome.WithLabelValues("valid", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchStrategy.WithLabelValues("collapse_spaces")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationSource.WithLabelValues("rule", "true")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementOutcome("invalid", "empty_input")
		m.ObserveRegistryLatency("error", time.Second)
		m.IncrementStrategy("trim")
		m.IncrementValidation("ai", false)
	})
}
