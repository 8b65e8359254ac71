/*
Package observability provides Prometheus instrumentation for the flow
editor: edit throughput, normalization cost and validation pressure per
flow.
*/
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded by the editor. A nil *Metrics is
// valid and records nothing, so callers never need to guard call sites.
type Metrics struct {
	Edits             *prometheus.CounterVec
	NormalizeDuration prometheus.Histogram
	Issues            *prometheus.GaugeVec
	ActiveFlows       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on the given
// registerer (use prometheus.DefaultRegisterer for the global one).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Edits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zapflow_edits_total",
				Help: "Total number of edits applied, by edit type",
			},
			[]string{"type"},
		),
		NormalizeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "zapflow_normalize_duration_seconds",
				Help:    "Duration of graph normalization",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		Issues: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "zapflow_validation_issues",
				Help: "Validation issues reported on the last check, per flow",
			},
			[]string{"flow_id"},
		),
		ActiveFlows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "zapflow_active_flows",
				Help: "Flows currently open in an editing session",
			},
		),
	}
	reg.MustRegister(m.Edits, m.NormalizeDuration, m.Issues, m.ActiveFlows)
	return m
}

// RecordEdit counts one applied edit.
func (m *Metrics) RecordEdit(editType string) {
	if m == nil {
		return
	}
	m.Edits.WithLabelValues(editType).Inc()
}

// ObserveNormalize records one normalization duration in seconds.
func (m *Metrics) ObserveNormalize(seconds float64) {
	if m == nil {
		return
	}
	m.NormalizeDuration.Observe(seconds)
}

// SetIssues records the issue count of the latest validation of a flow.
func (m *Metrics) SetIssues(flowID string, count int) {
	if m == nil {
		return
	}
	m.Issues.WithLabelValues(flowID).Set(float64(count))
}

// FlowOpened increments the active flow gauge.
func (m *Metrics) FlowOpened() {
	if m == nil {
		return
	}
	m.ActiveFlows.Inc()
}

// FlowClosed decrements the active flow gauge.
func (m *Metrics) FlowClosed() {
	if m == nil {
		return
	}
	m.ActiveFlows.Dec()
}
