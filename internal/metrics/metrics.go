// Package metrics instruments the orchestrator with Prometheus collectors:
// the use-case latency budget, plus hint/milestone/retry counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the orchestrator registers. A single
// instance is constructed at process startup and passed into the use-case
// layer by dependency injection — no package-level globals.
type Metrics struct {
	UseCaseLatency        *prometheus.HistogramVec
	HintRuleFirings        *prometheus.CounterVec
	MilestonesReached      *prometheus.CounterVec
	ConcurrentModification *prometheus.CounterVec
	EventCascadeDepth      prometheus.Histogram
}

// New builds and registers every collector against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UseCaseLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskvision",
			Subsystem: "usecase",
			Name:      "latency_seconds",
			Help:      "Use-case handling latency, including enrichment/hints/aggregation overhead.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .075, .1, .25, .5, 1},
		}, []string{"tool"}),
		HintRuleFirings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskvision",
			Subsystem: "hints",
			Name:      "rule_firings_total",
			Help:      "Number of times each Hint Enhancer rule has fired.",
		}, []string{"rule"}),
		MilestonesReached: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskvision",
			Subsystem: "progress",
			Name:      "milestones_reached_total",
			Help:      "Number of ProgressMilestoneReached events emitted, by milestone name.",
		}, []string{"milestone"}),
		ConcurrentModification: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskvision",
			Subsystem: "store",
			Name:      "concurrent_modification_total",
			Help:      "Number of CONCURRENT_MODIFICATION errors returned, by task id.",
		}, []string{"task_id"}),
		EventCascadeDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "taskvision",
			Subsystem: "events",
			Name:      "cascade_depth",
			Help:      "Depth reached by a use-case's synchronous event cascade.",
			Buckets:   prometheus.LinearBuckets(0, 1, 6),
		}),
	}

	reg.MustRegister(
		m.UseCaseLatency,
		m.HintRuleFirings,
		m.MilestonesReached,
		m.ConcurrentModification,
		m.EventCascadeDepth,
	)
	return m
}

// ObserveUseCase records how long a single tool's use-case took to handle.
func (m *Metrics) ObserveUseCase(tool string, seconds float64) {
	m.UseCaseLatency.WithLabelValues(tool).Observe(seconds)
}

// RecordHintFiring increments the firing count for a named rule.
func (m *Metrics) RecordHintFiring(rule string) {
	m.HintRuleFirings.WithLabelValues(rule).Inc()
}

// RecordMilestone increments the reached count for a named milestone.
func (m *Metrics) RecordMilestone(name string) {
	m.MilestonesReached.WithLabelValues(name).Inc()
}

// RecordConcurrentModification increments the retry-exhausted count for a task.
func (m *Metrics) RecordConcurrentModification(taskID string) {
	m.ConcurrentModification.WithLabelValues(taskID).Inc()
}

// ObserveCascadeDepth records how deep a use-case's event cascade ran.
func (m *Metrics) ObserveCascadeDepth(depth int) {
	m.EventCascadeDepth.Observe(float64(depth))
}
