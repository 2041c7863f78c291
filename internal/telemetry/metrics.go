package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Message results recorded in sensorbridge_messages_total.
const (
	resultAccepted     = "accepted"
	resultUnknownTopic = "unknown_topic"
	resultDecodeError  = "decode_error"
)

// Metrics holds the Prometheus collectors for ingestion and flushing.
// A nil *Metrics records nothing.
type Metrics struct {
	messages      *prometheus.CounterVec
	pointsWritten *prometheus.CounterVec
	writeFailures *prometheus.CounterVec
	flushDuration *prometheus.HistogramVec

	factory promauto.Factory
}

// NewMetrics registers the collectors on reg.
// Panics if they are already registered there, as promauto does.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		factory: factory,
		messages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensorbridge_messages_total",
				Help: "Inbound MQTT messages by handling result",
			},
			[]string{"result"},
		),
		pointsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensorbridge_points_written_total",
				Help: "Points accepted by the time-series store",
			},
			[]string{"flusher"},
		),
		writeFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sensorbridge_point_write_failures_total",
				Help: "Points the time-series store rejected or timed out on",
			},
			[]string{"flusher"},
		),
		flushDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sensorbridge_flush_duration_seconds",
				Help:    "Wall time of one flush tick",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"flusher"},
		),
	}
}

// observeCache exposes the cache size as sensorbridge_cache_entries.
func (m *Metrics) observeCache(c *Cache) {
	if m == nil {
		return
	}
	m.factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "sensorbridge_cache_entries",
			Help: "Topics with a cached latest reading",
		},
		func() float64 { return float64(c.Len()) },
	)
}

func (m *Metrics) messageReceived(result string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(result).Inc()
}

func (m *Metrics) recordFlush(flusher string, res FlushResult) {
	if m == nil {
		return
	}
	m.pointsWritten.WithLabelValues(flusher).Add(float64(res.Written))
	m.writeFailures.WithLabelValues(flusher).Add(float64(res.Failed))
	m.flushDuration.WithLabelValues(flusher).Observe(res.Duration.Seconds())
}
