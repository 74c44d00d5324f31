package worker

import (
	"log/slog"

	"github.com/c360/streamkit/metric"
)

// Option configures a pool at construction time.
type Option[T any] func(*poolOptions)

// poolOptions holds construction-time configuration. Statistics are
// always collected and are not an option.
type poolOptions struct {
	name       string
	logger     *slog.Logger
	metricsReg *metric.MetricsRegistry
	component  string
}

// WithName sets the pool name used in log records. The default is
// "pool".
func WithName[T any](name string) Option[T] {
	return func(opts *poolOptions) {
		opts.name = name
	}
}

// WithLogger sets the logger for lifecycle and failure records. The
// default is slog.Default().
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(opts *poolOptions) {
		opts.logger = logger
	}
}

// WithMetricsRegistry exposes pool statistics as Prometheus metrics
// labelled with the given component name. A nil registry or empty
// component leaves metrics disabled.
func WithMetricsRegistry[T any](registry *metric.MetricsRegistry, component string) Option[T] {
	return func(opts *poolOptions) {
		if registry != nil && component != "" {
			opts.metricsReg = registry
			opts.component = component
		}
	}
}

func applyOptions[T any](options ...Option[T]) *poolOptions {
	opts := &poolOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
