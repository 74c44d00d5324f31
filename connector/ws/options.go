package ws

import (
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/c360/streamkit/metric"
)

// Option configures a Source or Sink. Options that only apply to one
// of the two are ignored by the other.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	registry  *metric.MetricsRegistry
	component string
	dialer    *websocket.Dialer

	// Sink tuning.
	sendRate  float64
	sendBurst int
}

func defaultOptions() *options {
	return &options{
		logger: slog.Default(),
		dialer: websocket.DefaultDialer,
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

// WithDialer sets the dialer used by Connect. Defaults to
// websocket.DefaultDialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(o *options) {
		if dialer != nil {
			o.dialer = dialer
		}
	}
}

// WithSendRate caps sink throughput in frames per second with the
// given burst. Zero rate means unlimited, the default.
func WithSendRate(perSecond float64, burst int) Option {
	return func(o *options) {
		if perSecond > 0 {
			o.sendRate = perSecond
			o.sendBurst = burst
		}
	}
}
