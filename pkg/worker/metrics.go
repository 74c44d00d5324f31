package worker

import (
	"time"

	"github.com/c360/streamkit/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// poolMetrics mirrors pool counters into Prometheus. Metrics are
// incremented alongside stats, never derived from them.
type poolMetrics struct {
	submitted prometheus.Counter
	processed prometheus.Counter
	failed    prometheus.Counter
	dropped   prometheus.Counter

	queueDepth  prometheus.Gauge
	utilization prometheus.Gauge

	processingTime *prometheus.HistogramVec
}

func newPoolMetrics(registry *metric.MetricsRegistry, component string) (*poolMetrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "streamkit",
			Subsystem:   "worker",
			Name:        name,
			ConstLabels: prometheus.Labels{"component": component},
			Help:        help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "streamkit",
			Subsystem:   "worker",
			Name:        name,
			ConstLabels: prometheus.Labels{"component": component},
			Help:        help,
		})
	}

	m := &poolMetrics{
		submitted:   counter("submitted_total", "Total work items submitted"),
		processed:   counter("processed_total", "Total work items processed"),
		failed:      counter("failed_total", "Total work items whose processor returned an error"),
		dropped:     counter("dropped_total", "Total work items dropped because the queue was full"),
		queueDepth:  gauge("queue_depth", "Current number of queued work items"),
		utilization: gauge("utilization", "Queue fill fraction from 0.0 to 1.0"),
		processingTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "streamkit",
			Subsystem:   "worker",
			Name:        "processing_duration_seconds",
			ConstLabels: prometheus.Labels{"component": component},
			Help:        "Time spent processing work items",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"status"}),
	}

	if err := registry.RegisterCounter(component, "worker_submitted", m.submitted); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "worker_processed", m.processed); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "worker_failed", m.failed); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "worker_dropped", m.dropped); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(component, "worker_queue_depth", m.queueDepth); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(component, "worker_utilization", m.utilization); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec(component, "worker_processing_duration", m.processingTime); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *poolMetrics) recordSubmit(depth int) {
	m.submitted.Inc()
	m.queueDepth.Set(float64(depth))
}

func (m *poolMetrics) recordDrop() {
	m.dropped.Inc()
}

func (m *poolMetrics) recordResult(err error, duration time.Duration) {
	m.processed.Inc()
	status := "success"
	if err != nil {
		m.failed.Inc()
		status = "error"
	}
	m.processingTime.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *poolMetrics) updateQueue(depth, queueSize int) {
	m.queueDepth.Set(float64(depth))
	m.utilization.Set(float64(depth) / float64(queueSize))
}
