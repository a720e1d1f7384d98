// Package metrics exposes Prometheus instrumentation for the Flow
// Engine: in-flight micro-agent concurrency, phase/task outcomes, and
// discovery scan counts, carried as ambient observability per
// SPEC_FULL.md even though no [MODULE] names metrics explicitly,
// grounded on compozy's engine/infra/monitoring use of
// prometheus/client_golang.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every instrument the Flow Engine reports to, backed
// by its own registry so tests can instantiate isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	MicroAgentsInFlight prometheus.Gauge
	PhaseOutcomes       *prometheus.CounterVec
	TaskOutcomes        *prometheus.CounterVec
	DiscoveryScans      *prometheus.CounterVec
	WorkflowDuration    *prometheus.HistogramVec
}

// New builds a Metrics bundle registered against a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		MicroAgentsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flowengine",
			Name:      "microagents_in_flight",
			Help:      "Number of micro-agents currently executing concurrently.",
		}),
		PhaseOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowengine",
			Name:      "phase_outcomes_total",
			Help:      "Count of phase executions by workflow and outcome.",
		}, []string{"workflow", "phase", "outcome"}),
		TaskOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowengine",
			Name:      "task_outcomes_total",
			Help:      "Count of task executions by workflow and outcome.",
		}, []string{"workflow", "task", "outcome"}),
		DiscoveryScans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowengine",
			Name:      "discovery_scans_total",
			Help:      "Count of workflow discovery scans by result.",
		}, []string{"result"}),
		WorkflowDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flowengine",
			Name:      "workflow_duration_seconds",
			Help:      "End-to-end workflow execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"workflow", "outcome"}),
	}

	reg.MustRegister(m.MicroAgentsInFlight, m.PhaseOutcomes, m.TaskOutcomes, m.DiscoveryScans, m.WorkflowDuration)
	return m
}

// Handler serves the registry's metrics in the Prometheus exposition
// format, suitable for mounting at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPhase records a completed phase's outcome.
func (m *Metrics) RecordPhase(workflow, phase string, success bool) {
	m.PhaseOutcomes.WithLabelValues(workflow, phase, outcomeLabel(success)).Inc()
}

// RecordTask records a completed task's outcome.
func (m *Metrics) RecordTask(workflow, task string, success bool) {
	m.TaskOutcomes.WithLabelValues(workflow, task, outcomeLabel(success)).Inc()
}

// RecordDiscoveryScan records one discovery pass's result.
func (m *Metrics) RecordDiscoveryScan(result string) {
	m.DiscoveryScans.WithLabelValues(result).Inc()
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
