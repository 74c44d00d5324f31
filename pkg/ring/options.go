package ring

import (
	"github.com/c360/streamkit/metric"
)

// Option configures a ring at construction time.
type Option[T any] func(*ringOptions[T])

// ringOptions holds construction-time configuration. Statistics are
// always collected and are not an option.
type ringOptions[T any] struct {
	policy     OverflowPolicy
	dropFn     DropCallback[T]
	metricsReg *metric.MetricsRegistry
	component  string
}

// WithOverflowPolicy sets the behavior when the ring is full. The
// default is DropOldest.
func WithOverflowPolicy[T any](policy OverflowPolicy) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.policy = policy
	}
}

// WithDropCallback installs an observer for items discarded by the
// overflow policy or by Clear.
func WithDropCallback[T any](fn DropCallback[T]) Option[T] {
	return func(opts *ringOptions[T]) {
		opts.dropFn = fn
	}
}

// WithMetrics exposes ring statistics as Prometheus metrics labelled
// with the given component name. A nil registry or empty component
// leaves metrics disabled.
func WithMetrics[T any](registry *metric.MetricsRegistry, component string) Option[T] {
	return func(opts *ringOptions[T]) {
		if registry != nil && component != "" {
			opts.metricsReg = registry
			opts.component = component
		}
	}
}

func applyOptions[T any](options ...Option[T]) *ringOptions[T] {
	opts := &ringOptions[T]{
		policy: DropOldest,
	}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
