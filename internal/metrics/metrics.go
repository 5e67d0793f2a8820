package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for address resolution.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	// Resolution outcomes by status and reason code
	ResolutionOutcome *prometheus.CounterVec

	// Registry query latency by outcome (hit, empty, error, cached)
	RegistryLatency *prometheus.HistogramVec

	// Which search strategy produced the accepted candidate
	SearchStrategy *prometheus.CounterVec

	// Which pipeline tier decided the detail outcome
	ValidationSource *prometheus.CounterVec
}

// New creates a new Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors with reg (tests pass a fresh registry).
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ResolutionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "address_resolution_outcomes_total",
			Help: "Total address resolutions by status and reason code",
		}, []string{"status", "reason"}),

		RegistryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "address_registry_query_duration_seconds",
			Help:    "Duration of registry keyword queries by outcome",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"outcome"}),

		SearchStrategy: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "address_search_strategy_matches_total",
			Help: "Accepted candidates by the search strategy that found them",
		}, []string{"strategy"}),

		ValidationSource: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "address_detail_validation_total",
			Help: "Detail validation outcomes by deciding tier and validity",
		}, []string{"source", "valid"}),
	}
}

// IncrementOutcome records a resolution outcome.
func (m *Metrics) IncrementOutcome(status, reason string) {
	if m != nil {
		m.ResolutionOutcome.WithLabelValues(status, reason).Inc()
	}
}

// ObserveRegistryLatency records the duration of one registry query.
func (m *Metrics) ObserveRegistryLatency(outcome string, d time.Duration) {
	if m != nil {
		m.RegistryLatency.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// IncrementStrategy records the strategy that produced a match.
func (m *Metrics) IncrementStrategy(strategy string) {
	if m != nil {
		m.SearchStrategy.WithLabelValues(strategy).Inc()
	}
}

// IncrementValidation records which tier decided a detail outcome.
func (m *Metrics) IncrementValidation(source string, valid bool) {
	if m != nil {
		label := "false"
		if valid {
			label = "true"
		}
		m.ValidationSource.WithLabelValues(source, label).Inc()
	}
}
