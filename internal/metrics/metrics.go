// Package metrics records Prometheus metrics for the bill-splitting flow.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "splitbill"

// Outcome labels.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
)

// Metrics holds the collectors for sessions, intents, calculations and exports.
type Metrics struct {
	sessions       prometheus.Counter
	intents        *prometheus.CounterVec
	participants   prometheus.Histogram
	exports        *prometheus.CounterVec
	exportDuration prometheus.Histogram
}

// New registers the collectors on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	sessions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Sessions started.",
	})
	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "intents_total",
		Help:      "Session intents by name and outcome.",
	}, []string{"intent", "outcome"})
	participants := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "calculation_participants",
		Help:      "Participants per successful calculation.",
		Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 20},
	})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Summary image exports by outcome.",
	}, []string{"outcome"})
	exportDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Duration of summary image exports in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
	reg.MustRegister(sessions, intents, participants, exports, exportDuration)
	return &Metrics{
		sessions:       sessions,
		intents:        intents,
		participants:   participants,
		exports:        exports,
		exportDuration: exportDuration,
	}
}

// IncSessions counts a started session.
func (m *Metrics) IncSessions() {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Inc()
}

// ObserveIntent counts an intent with its outcome.
func (m *Metrics) ObserveIntent(intent, outcome string) {
	if m == nil || m.intents == nil {
		return
	}
	m.intents.WithLabelValues(normalizeLabel(intent), outcome).Inc()
}

// ObserveCalculation records the participant count of a calculation.
func (m *Metrics) ObserveCalculation(participants int) {
	if m == nil || m.participants == nil {
		return
	}
	m.participants.Observe(float64(participants))
}

// ObserveExport records an export's outcome and duration.
func (m *Metrics) ObserveExport(outcome string, duration time.Duration) {
	if m == nil || m.exports == nil {
		return
	}
	m.exports.WithLabelValues(outcome).Inc()
	m.exportDuration.Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
