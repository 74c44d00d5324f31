package cache

import (
	"github.com/c360/streamkit/metric"
)

// Option configures a cache at construction time.
type Option[V any] func(*cacheOptions[V])

type cacheOptions[V any] struct {
	metricsReg *metric.MetricsRegistry
	component  string
	evictFn    EvictCallback[V]
}

// WithMetrics exports cache statistics as Prometheus metrics labeled
// with the given component name. Ignored when registry is nil or the
// component name is empty.
func WithMetrics[V any](registry *metric.MetricsRegistry, component string) Option[V] {
	return func(opts *cacheOptions[V]) {
		if registry != nil && component != "" {
			opts.metricsReg = registry
			opts.component = component
		}
	}
}

// WithEvictionCallback registers a callback invoked for every entry
// that leaves the cache.
func WithEvictionCallback[V any](callback EvictCallback[V]) Option[V] {
	return func(opts *cacheOptions[V]) {
		opts.evictFn = callback
	}
}

func applyOptions[V any](options ...Option[V]) *cacheOptions[V] {
	opts := &cacheOptions[V]{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
