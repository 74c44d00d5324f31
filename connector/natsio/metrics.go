package natsio

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/streamkit/metric"
)

// sourceMetrics tracks the pull consumer side. All methods tolerate a
// nil receiver so call sites need no guards when metrics are off.
type sourceMetrics struct {
	fetched     prometheus.Counter
	fetchErrors prometheus.Counter
	acked       prometheus.Counter
	naked       prometheus.Counter
	splits      prometheus.Counter

	prefetchDepth prometheus.Gauge
	pending       prometheus.Gauge
}

func newSourceMetrics(registry *metric.MetricsRegistry, component string) (*sourceMetrics, error) {
	if registry == nil || component == "" {
		return nil, nil
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "streamkit",
			Subsystem:   "natsio",
			Name:        name,
			ConstLabels: prometheus.Labels{"component": component},
			Help:        help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "streamkit",
			Subsystem:   "natsio",
			Name:        name,
			ConstLabels: prometheus.Labels{"component": component},
			Help:        help,
		})
	}

	m := &sourceMetrics{
		fetched:       counter("fetched_total", "Total messages fetched from the consumer"),
		fetchErrors:   counter("fetch_errors_total", "Total failed fetch attempts"),
		acked:         counter("acked_total", "Total messages acknowledged"),
		naked:         counter("naked_total", "Total messages negatively acknowledged"),
		splits:        counter("splits_total", "Total sibling spliterators handed out"),
		prefetchDepth: gauge("prefetch_depth", "Messages buffered ahead of the pipeline"),
		pending:       gauge("pending_messages", "Messages pending on the server for this consumer"),
	}

	if err := registry.RegisterCounter(component, "natsio_fetched", m.fetched); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "natsio_fetch_errors", m.fetchErrors); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "natsio_acked", m.acked); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "natsio_naked", m.naked); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "natsio_splits", m.splits); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(component, "natsio_prefetch_depth", m.prefetchDepth); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(component, "natsio_pending", m.pending); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *sourceMetrics) recordFetched(depth int) {
	if m == nil {
		return
	}
	m.fetched.Inc()
	m.prefetchDepth.Set(float64(depth))
}

func (m *sourceMetrics) recordFetchError() {
	if m != nil {
		m.fetchErrors.Inc()
	}
}

func (m *sourceMetrics) recordAck() {
	if m != nil {
		m.acked.Inc()
	}
}

func (m *sourceMetrics) recordNak() {
	if m != nil {
		m.naked.Inc()
	}
}

func (m *sourceMetrics) recordSplit() {
	if m != nil {
		m.splits.Inc()
	}
}

func (m *sourceMetrics) updatePending(n uint64) {
	if m != nil {
		m.pending.Set(float64(n))
	}
}

// publisherMetrics tracks the publish side. Methods tolerate a nil
// receiver.
type publisherMetrics struct {
	published prometheus.Counter
	failures  prometheus.Counter
	duration  *prometheus.HistogramVec
}

func newPublisherMetrics(registry *metric.MetricsRegistry, component string) (*publisherMetrics, error) {
	if registry == nil || component == "" {
		return nil, nil
	}

	m := &publisherMetrics{
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "streamkit",
			Subsystem:   "natsio",
			Name:        "published_total",
			ConstLabels: prometheus.Labels{"component": component},
			Help:        "Total messages published",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "streamkit",
			Subsystem:   "natsio",
			Name:        "publish_errors_total",
			ConstLabels: prometheus.Labels{"component": component},
			Help:        "Total publishes that failed after retries",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "streamkit",
			Subsystem:   "natsio",
			Name:        "publish_duration_seconds",
			ConstLabels: prometheus.Labels{"component": component},
			Help:        "Publish latency including retries",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"status"}),
	}

	if err := registry.RegisterCounter(component, "natsio_published", m.published); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "natsio_publish_errors", m.failures); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec(component, "natsio_publish_duration", m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *publisherMetrics) recordPublish(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		m.failures.Inc()
	} else {
		m.published.Inc()
	}
	m.duration.WithLabelValues(status).Observe(elapsed.Seconds())
}
