package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all library-level metrics (not application-specific)
type Metrics struct {
	// Pipeline metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
	ParallelLeaves     prometheus.Histogram
	ShortCircuitsTotal *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec

	// Connector metrics
	MessagesReceived    *prometheus.CounterVec
	MessagesPublished   *prometheus.CounterVec
	PublishDuration     *prometheus.HistogramVec
	ConnectorConnected  *prometheus.GaugeVec
	ConnectorReconnects *prometheus.CounterVec
	BufferDropped       *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all library metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Pipeline metrics
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streamkit",
				Subsystem: "pipeline",
				Name:      "evaluations_total",
				Help:      "Total number of pipeline evaluations",
			},
			[]string{"mode", "outcome"},
		),

		EvaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "streamkit",
				Subsystem: "pipeline",
				Name:      "duration_seconds",
				Help:      "Pipeline evaluation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),

		ParallelLeaves: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "streamkit",
				Subsystem: "pipeline",
				Name:      "parallel_leaves",
				Help:      "Number of leaf tasks per parallel evaluation",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),

		ShortCircuitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streamkit",
				Subsystem: "pipeline",
				Name:      "short_circuits_total",
				Help:      "Total number of evaluations that stopped before source exhaustion",
			},
			[]string{"mode"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streamkit",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"component", "class"},
		),

		// Connector metrics
		MessagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streamkit",
				Subsystem: "messages",
				Name:      "received_total",
				Help:      "Total number of messages received",
			},
			[]string{"connector", "subject"},
		),

		MessagesPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streamkit",
				Subsystem: "messages",
				Name:      "published_total",
				Help:      "Total number of messages published",
			},
			[]string{"connector", "subject"},
		),

		PublishDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "streamkit",
				Subsystem: "publish",
				Name:      "duration_seconds",
				Help:      "Publish round-trip duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"connector"},
		),

		ConnectorConnected: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "streamkit",
				Subsystem: "connector",
				Name:      "connected",
				Help:      "Connector connection status (0=disconnected, 1=connected)",
			},
			[]string{"connector"},
		),

		ConnectorReconnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streamkit",
				Subsystem: "connector",
				Name:      "reconnects_total",
				Help:      "Total number of connector reconnections",
			},
			[]string{"connector"},
		),

		BufferDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streamkit",
				Subsystem: "connector",
				Name:      "buffer_dropped_total",
				Help:      "Total number of elements dropped by connector buffers",
			},
			[]string{"connector"},
		),
	}
}

// RecordEvaluation records the outcome and duration of a pipeline evaluation
func (c *Metrics) RecordEvaluation(mode, outcome string, duration time.Duration) {
	c.EvaluationsTotal.WithLabelValues(mode, outcome).Inc()
	c.EvaluationDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordParallelLeaves records how many leaf tasks a parallel evaluation used
func (c *Metrics) RecordParallelLeaves(leaves int) {
	c.ParallelLeaves.Observe(float64(leaves))
}

// RecordShortCircuit increments the short-circuit counter
func (c *Metrics) RecordShortCircuit(mode string) {
	c.ShortCircuitsTotal.WithLabelValues(mode).Inc()
}

// RecordError increments the error counter
func (c *Metrics) RecordError(component, class string) {
	c.ErrorsTotal.WithLabelValues(component, class).Inc()
}

// RecordMessageReceived increments the received message counter
func (c *Metrics) RecordMessageReceived(connector, subject string) {
	c.MessagesReceived.WithLabelValues(connector, subject).Inc()
}

// RecordMessagePublished increments the published message counter
func (c *Metrics) RecordMessagePublished(connector, subject string) {
	c.MessagesPublished.WithLabelValues(connector, subject).Inc()
}

// RecordPublishDuration records one publish round trip
func (c *Metrics) RecordPublishDuration(connector string, duration time.Duration) {
	c.PublishDuration.WithLabelValues(connector).Observe(duration.Seconds())
}

// RecordConnectorStatus updates connector connection status
func (c *Metrics) RecordConnectorStatus(connector string, connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.ConnectorConnected.WithLabelValues(connector).Set(value)
}

// RecordConnectorReconnect increments the reconnection counter
func (c *Metrics) RecordConnectorReconnect(connector string) {
	c.ConnectorReconnects.WithLabelValues(connector).Inc()
}

// RecordBufferDrop increments the buffer drop counter
func (c *Metrics) RecordBufferDrop(connector string) {
	c.BufferDropped.WithLabelValues(connector).Inc()
}
