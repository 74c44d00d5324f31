package ws

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/streamkit/metric"
)

// sourceMetrics tracks the inbound side. All methods tolerate a nil
// receiver so call sites need no guards when metrics are off. Buffer
// drops and depth are reported by the ring's own metrics.
type sourceMetrics struct {
	received    prometheus.Counter
	readErrors  prometheus.Counter
	bufferDepth prometheus.Gauge
}

func newSourceMetrics(registry *metric.MetricsRegistry, component string) (*sourceMetrics, error) {
	if registry == nil || component == "" {
		return nil, nil
	}

	m := &sourceMetrics{
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "streamkit",
			Subsystem:   "ws",
			Name:        "received_total",
			ConstLabels: prometheus.Labels{"component": component},
			Help:        "Total data frames read from the connection",
		}),
		readErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "streamkit",
			Subsystem:   "ws",
			Name:        "read_errors_total",
			ConstLabels: prometheus.Labels{"component": component},
			Help:        "Total read failures that stopped the pump",
		}),
		bufferDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "streamkit",
			Subsystem:   "ws",
			Name:        "buffer_depth",
			ConstLabels: prometheus.Labels{"component": component},
			Help:        "Frames buffered ahead of the pipeline",
		}),
	}

	if err := registry.RegisterCounter(component, "ws_received", m.received); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "ws_read_errors", m.readErrors); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(component, "ws_buffer_depth", m.bufferDepth); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *sourceMetrics) recordReceived(depth int) {
	if m == nil {
		return
	}
	m.received.Inc()
	m.bufferDepth.Set(float64(depth))
}

func (m *sourceMetrics) recordReadError() {
	if m != nil {
		m.readErrors.Inc()
	}
}

// sinkMetrics tracks the outbound side. Methods tolerate a nil
// receiver.
type sinkMetrics struct {
	sent     prometheus.Counter
	failures prometheus.Counter
	pings    prometheus.Counter
	duration *prometheus.HistogramVec
}

func newSinkMetrics(registry *metric.MetricsRegistry, component string) (*sinkMetrics, error) {
	if registry == nil || component == "" {
		return nil, nil
	}

	m := &sinkMetrics{
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "streamkit",
			Subsystem:   "ws",
			Name:        "sent_total",
			ConstLabels: prometheus.Labels{"component": component},
			Help:        "Total frames written",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "streamkit",
			Subsystem:   "ws",
			Name:        "send_errors_total",
			ConstLabels: prometheus.Labels{"component": component},
			Help:        "Total writes that failed",
		}),
		pings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "streamkit",
			Subsystem:   "ws",
			Name:        "pings_total",
			ConstLabels: prometheus.Labels{"component": component},
			Help:        "Total keepalive pings sent",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "streamkit",
			Subsystem:   "ws",
			Name:        "send_duration_seconds",
			ConstLabels: prometheus.Labels{"component": component},
			Help:        "Frame write latency",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"status"}),
	}

	if err := registry.RegisterCounter(component, "ws_sent", m.sent); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "ws_send_errors", m.failures); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "ws_pings", m.pings); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec(component, "ws_send_duration", m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *sinkMetrics) recordSend(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		m.failures.Inc()
	} else {
		m.sent.Inc()
	}
	m.duration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (m *sinkMetrics) recordPing() {
	if m != nil {
		m.pings.Inc()
	}
}
