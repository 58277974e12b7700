// Package metrics provides Prometheus metrics for the analyzer.
package metrics

import (
	"time"

	"github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meeting_analyzer"

// Metrics holds all Prometheus metrics for the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	DocumentsTotal    *prometheus.CounterVec
	AnalysisErrors    *prometheus.CounterVec
	CompletionLatency *prometheus.HistogramVec
	RunsTotal         prometheus.Counter
	LastRunTimestamp  prometheus.Gauge
}

// New creates and registers all metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents handled by batch runs, by outcome",
		}, []string{"outcome"}),
		AnalysisErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_errors_total",
			Help:      "Analysis pipeline failures, by error kind",
		}, []string{"kind"}),
		CompletionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_latency_seconds",
			Help:      "Completion request latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"result"}),
		RunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of batch runs",
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last batch run finished",
		}),
	}
}

// RecordDocument records one document outcome
func (m *Metrics) RecordDocument(outcome string) {
	if m == nil {
		return
	}
	m.DocumentsTotal.WithLabelValues(outcome).Inc()
}

// RecordAnalysisError records a pipeline failure by kind name
func (m *Metrics) RecordAnalysisError(kind string) {
	if m == nil {
		return
	}
	m.AnalysisErrors.WithLabelValues(kind).Inc()
}

// RecordCompletion records the latency of one completion round trip
func (m *Metrics) RecordCompletion(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		if kind, ok := ai.KindOf(err); ok {
			result = kind.String()
		}
	}
	m.CompletionLatency.WithLabelValues(result).Observe(d.Seconds())
}

// RecordRun records a finished batch run
func (m *Metrics) RecordRun(finishedAt time.Time) {
	if m == nil {
		return
	}
	m.RunsTotal.Inc()
	m.LastRunTimestamp.Set(float64(finishedAt.Unix()))
}
