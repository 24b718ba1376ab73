package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks metrics for batch evaluation.
//
// Metrics:
//   - meridian_engine_evaluations_total: Batch count by mode and status
//   - meridian_engine_evaluation_duration_seconds: Batch duration histogram
//   - meridian_engine_itineraries_total: Itineraries evaluated
//   - meridian_engine_record_failures_total: Failed payment records by rule
//   - meridian_engine_sequential_fallbacks_total: Parallel batches re-run sequentially
type Metrics struct {
	// Batch evaluation count
	evaluationsTotal *prometheus.CounterVec

	// Batch duration histogram
	evaluationDuration *prometheus.HistogramVec

	// Itineraries evaluated
	itinerariesTotal prometheus.Counter

	// Record failures attributed per rule
	recordFailuresTotal *prometheus.CounterVec

	// Parallel batches that fell back to the sequential path
	sequentialFallbacksTotal prometheus.Counter
}

// NewMetrics creates and registers engine metrics with the provided registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meridian",
				Subsystem: "engine",
				Name:      "evaluations_total",
				Help:      "Total number of batch evaluations",
			},
			[]string{"mode", "status"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "meridian",
				Subsystem: "engine",
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of batch evaluations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to 4s
			},
			[]string{"mode"},
		),

		itinerariesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "meridian",
				Subsystem: "engine",
				Name:      "itineraries_total",
				Help:      "Total number of itineraries evaluated",
			},
		),

		recordFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meridian",
				Subsystem: "engine",
				Name:      "record_failures_total",
				Help:      "Total number of payment records failed, per rule",
			},
			[]string{"rule"},
		),

		sequentialFallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "meridian",
				Subsystem: "engine",
				Name:      "sequential_fallbacks_total",
				Help:      "Total number of parallel batches re-run sequentially",
			},
		),
	}

	registry.MustRegister(
		m.evaluationsTotal,
		m.evaluationDuration,
		m.itinerariesTotal,
		m.recordFailuresTotal,
		m.sequentialFallbacksTotal,
	)

	return m
}

// RecordEvaluation records one finished batch evaluation.
func (m *Metrics) RecordEvaluation(mode, status string, itineraries int, duration time.Duration) {
	if m == nil {
		return
	}
	m.evaluationsTotal.WithLabelValues(mode, status).Inc()
	m.evaluationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.itinerariesTotal.Add(float64(itineraries))
}

// RecordRuleFailure records one payment record failed by the named rule.
func (m *Metrics) RecordRuleFailure(rule string) {
	if m == nil {
		return
	}
	m.recordFailuresTotal.WithLabelValues(rule).Inc()
}

// RecordSequentialFallback records a parallel batch re-run sequentially.
func (m *Metrics) RecordSequentialFallback() {
	if m == nil {
		return
	}
	m.sequentialFallbacksTotal.Inc()
}
