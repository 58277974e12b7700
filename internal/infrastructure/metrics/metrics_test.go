package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordDocument("processed")
	m.RecordDocument("processed")
	m.RecordAnalysisError("timeout")
	m.RecordCompletion(time.Second, &ai.TimeoutError{})
	m.RecordCompletion(time.Second, errors.New("boom"))
	m.RecordCompletion(time.Second, nil)
	m.RecordRun(time.Unix(1700000000, 0))

	assert.Equal(t, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("processed")), 2.0)
	assert.Equal(t, testutil.ToFloat64(m.AnalysisErrors.WithLabelValues("timeout")), 1.0)
	assert.Equal(t, testutil.CollectAndCount(m.CompletionLatency), 3)
	assert.Equal(t, testutil.ToFloat64(m.RunsTotal), 1.0)
	assert.Equal(t, testutil.ToFloat64(m.LastRunTimestamp), 1700000000.0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordDocument("processed")
	m.RecordAnalysisError("timeout")
	m.RecordCompletion(time.Second, nil)
	m.RecordRun(time.Now())
}
