package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ScanSucceeded = "success"
	ScanFailed    = "failure"
)

// Metrics of the change detection engine. A nil *Metrics records nothing.
type Metrics struct {
	SignalsReceived prometheus.Counter
	ScansTotal      *prometheus.CounterVec
	ScanDuration    prometheus.Histogram
	EventsPublished *prometheus.CounterVec
	Subscribers     prometheus.Gauge
	StreamsStarted  prometheus.Counter
}

func MetricsNew() *Metrics {
	return &Metrics{
		SignalsReceived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "devchange",
				Subsystem: "pump",
				Name:      "signals_total",
				Help:      "Total number of hardware change signals handed to the scan coordinator",
			},
		),

		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "devchange",
				Subsystem: "scan",
				Name:      "total",
				Help:      "Total number of completed scans",
			},
			[]string{"result"},
		),

		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "devchange",
				Subsystem: "scan",
				Name:      "duration_seconds",
				Help:      "Duration of fetch, diff and publish of a scan in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "devchange",
				Subsystem: "stream",
				Name:      "events_published_total",
				Help:      "Total number of device change events published",
			},
			[]string{"kind"},
		),

		Subscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "devchange",
				Subsystem: "stream",
				Name:      "subscribers",
				Help:      "Number of active subscribers of the shared change stream",
			},
		),

		StreamsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "devchange",
				Subsystem: "stream",
				Name:      "started_total",
				Help:      "Total number of shared stream instances started",
			},
		),
	}
}

// Register adds all metrics to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.SignalsReceived,
		m.ScansTotal,
		m.ScanDuration,
		m.EventsPublished,
		m.Subscribers,
		m.StreamsStarted,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) RecordSignal() {
	if m == nil {
		return
	}
	m.SignalsReceived.Inc()
}

func (m *Metrics) RecordScan(succeeded bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := ScanSucceeded
	if !succeeded {
		result = ScanFailed
	}
	m.ScansTotal.WithLabelValues(result).Inc()
	m.ScanDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordEvent(kind string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordSubscribers(n int) {
	if m == nil {
		return
	}
	m.Subscribers.Set(float64(n))
}

func (m *Metrics) RecordStreamStarted() {
	if m == nil {
		return
	}
	m.StreamsStarted.Inc()
}
