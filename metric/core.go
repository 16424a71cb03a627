package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the client-level metrics: bridge calls, batching behavior,
// transport failures, and streaming activity.
type Metrics struct {
	// Bridge metrics
	CallsTotal    *prometheus.CounterVec
	CallDuration  *prometheus.HistogramVec
	TimeoutsTotal prometheus.Counter

	// Batcher metrics
	FlushesTotal    *prometheus.CounterVec
	BatchSize       prometheus.Histogram
	QueuedOpsTotal  prometheus.Counter
	PendingOpsGauge prometheus.Gauge

	// Transport metrics
	TransportErrors *prometheus.CounterVec

	// Streaming metrics
	StreamsActive prometheus.Gauge
	StreamRows    prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all client metrics
func NewMetrics() *Metrics {
	return &Metrics{
		CallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graphbridge",
				Subsystem: "bridge",
				Name:      "calls_total",
				Help:      "Total number of remote calls issued through the bridge",
			},
			[]string{"op", "outcome"},
		),

		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "graphbridge",
				Subsystem: "bridge",
				Name:      "call_duration_seconds",
				Help:      "Remote call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),

		TimeoutsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "graphbridge",
				Subsystem: "bridge",
				Name:      "timeouts_total",
				Help:      "Total number of calls abandoned by the caller-side timeout",
			},
		),

		FlushesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graphbridge",
				Subsystem: "batch",
				Name:      "flushes_total",
				Help:      "Total number of queue flushes",
			},
			[]string{"trigger"},
		),

		BatchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "graphbridge",
				Subsystem: "batch",
				Name:      "size",
				Help:      "Number of operations per flushed batch",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
			},
		),

		QueuedOpsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "graphbridge",
				Subsystem: "batch",
				Name:      "queued_ops_total",
				Help:      "Total number of mutation operations enqueued",
			},
		),

		PendingOpsGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "graphbridge",
				Subsystem: "batch",
				Name:      "pending_ops",
				Help:      "Mutation operations currently waiting for a flush",
			},
		),

		TransportErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graphbridge",
				Subsystem: "transport",
				Name:      "errors_total",
				Help:      "Total number of transport-level failures",
			},
			[]string{"op"},
		),

		StreamsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "graphbridge",
				Subsystem: "stream",
				Name:      "active",
				Help:      "Result streams currently open",
			},
		),

		StreamRows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "graphbridge",
				Subsystem: "stream",
				Name:      "rows_total",
				Help:      "Total rows received over result streams",
			},
		),
	}
}

// collectors returns every metric for registration.
func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CallsTotal,
		m.CallDuration,
		m.TimeoutsTotal,
		m.FlushesTotal,
		m.BatchSize,
		m.QueuedOpsTotal,
		m.PendingOpsGauge,
		m.TransportErrors,
		m.StreamsActive,
		m.StreamRows,
	}
}
