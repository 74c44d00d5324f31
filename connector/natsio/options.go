package natsio

import (
	"log/slog"
	"runtime"

	"github.com/c360/streamkit/metric"
)

// Option configures a Source or Publisher. Options that only apply to
// one of the two are ignored by the other.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	registry   *metric.MetricsRegistry
	component  string
	clientName string

	// Source tuning.
	bufferCapacity int
	maxSplits      int

	// Publisher tuning.
	workers   int
	queueSize int
}

func defaultOptions() *options {
	return &options{
		logger:     slog.Default(),
		clientName: "streamkit",
		maxSplits:  max(runtime.GOMAXPROCS(0)-1, 0),
		workers:    4,
		queueSize:  256,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRegistry enables Prometheus metrics, labeled with the
// given component name.
func WithMetricsRegistry(registry *metric.MetricsRegistry, component string) Option {
	return func(o *options) {
		if registry != nil && component != "" {
			o.registry = registry
			o.component = component
		}
	}
}

// WithClientName sets the NATS connection name shown in server
// monitoring. Defaults to "streamkit".
func WithClientName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.clientName = name
		}
	}
}

// WithBufferCapacity sets the source's prefetch ring capacity.
// Defaults to twice the fetch batch size.
func WithBufferCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferCapacity = n
		}
	}
}

// WithMaxSplits bounds how many sibling spliterators a source hands
// out. Defaults to GOMAXPROCS-1.
func WithMaxSplits(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxSplits = n
		}
	}
}

// WithPublishWorkers sets the worker count PublishStream uses.
// Defaults to 4.
func WithPublishWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithPublishQueue sets the pending-item queue size PublishStream
// uses. Defaults to 256.
func WithPublishQueue(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueSize = n
		}
	}
}
