package ring

import (
	"github.com/c360/streamkit/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// ringMetrics mirrors Statistics counters into Prometheus. Metrics are
// incremented alongside stats, never derived from them.
type ringMetrics struct {
	writes    prometheus.Counter
	reads     prometheus.Counter
	peeks     prometheus.Counter
	overflows prometheus.Counter
	drops     prometheus.Counter

	size        prometheus.Gauge
	utilization prometheus.Gauge
}

func newRingMetrics(registry *metric.MetricsRegistry, component string) (*ringMetrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "streamkit",
			Subsystem:   "ring",
			Name:        name,
			ConstLabels: prometheus.Labels{"component": component},
			Help:        help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "streamkit",
			Subsystem:   "ring",
			Name:        name,
			ConstLabels: prometheus.Labels{"component": component},
			Help:        help,
		})
	}

	m := &ringMetrics{
		writes:      counter("writes_total", "Total number of items admitted to the ring"),
		reads:       counter("reads_total", "Total number of items removed from the ring"),
		peeks:       counter("peeks_total", "Total number of non-destructive reads"),
		overflows:   counter("overflows_total", "Total number of writes that found the ring full"),
		drops:       counter("drops_total", "Total number of items discarded by the overflow policy"),
		size:        gauge("size", "Current number of items in the ring"),
		utilization: gauge("utilization", "Ring fill fraction from 0.0 to 1.0"),
	}

	if err := registry.RegisterCounter(component, "ring_writes", m.writes); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "ring_reads", m.reads); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "ring_peeks", m.peeks); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "ring_overflows", m.overflows); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(component, "ring_drops", m.drops); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(component, "ring_size", m.size); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(component, "ring_utilization", m.utilization); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ringMetrics) recordWrite(size, capacity int) {
	m.writes.Inc()
	m.updateSize(size, capacity)
}

func (m *ringMetrics) recordRead(size, capacity int) {
	m.reads.Inc()
	m.updateSize(size, capacity)
}

func (m *ringMetrics) recordBatchRead(n, size, capacity int) {
	m.reads.Add(float64(n))
	m.updateSize(size, capacity)
}

func (m *ringMetrics) recordPeek()     { m.peeks.Inc() }
func (m *ringMetrics) recordOverflow() { m.overflows.Inc() }
func (m *ringMetrics) recordDrop()     { m.drops.Inc() }

func (m *ringMetrics) updateSize(size, capacity int) {
	m.size.Set(float64(size))
	m.utilization.Set(float64(size) / float64(capacity))
}
