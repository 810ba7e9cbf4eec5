package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, m.Track("alerts:scan").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("alerts:scan").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("alerts:scan", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("alerts:scan", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("alerts:scan")))
}

func TestSetAlerts(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.SetAlerts("stock", 4)
	m.SetAlerts("stock", 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.alerts.WithLabelValues("stock")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.SetAlerts("expiry", 1)
	assert.NoError(t, m.Track("reports:refresh").End(nil))
}
