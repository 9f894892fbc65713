package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Run("records into registered collectors", func(t *testing.T) {
		m := MetricsNew()
		reg := prometheus.NewRegistry()
		require.NoError(t, m.Register(reg))

		m.RecordSignal()
		m.RecordScan(true, 10*time.Millisecond)
		m.RecordScan(false, time.Millisecond)
		m.RecordScan(false, time.Millisecond)
		m.RecordEvent("added")
		m.RecordSubscribers(3)
		m.RecordStreamStarted()

		assert.Equal(t, 1.0, testutil.ToFloat64(m.SignalsReceived))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues(ScanSucceeded)))
		assert.Equal(t, 2.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues(ScanFailed)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("added")))
		assert.Equal(t, 3.0, testutil.ToFloat64(m.Subscribers))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StreamsStarted))
	})

	t.Run("double registration fails", func(t *testing.T) {
		m := MetricsNew()
		reg := prometheus.NewRegistry()
		require.NoError(t, m.Register(reg))

		assert.Error(t, m.Register(reg))
	})

	t.Run("nil metrics record nothing", func(t *testing.T) {
		var m *Metrics

		assert.NotPanics(t, func() {
			m.RecordSignal()
			m.RecordScan(true, time.Second)
			m.RecordEvent("removed")
			m.RecordSubscribers(1)
			m.RecordStreamStarted()
		})
	})
}
