package natsio

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/time/rate"

	"github.com/c360/streamkit/config"
	"github.com/c360/streamkit/errors"
	"github.com/c360/streamkit/metric"
	"github.com/c360/streamkit/pkg/worker"
	"github.com/c360/streamkit/stream"
)

// Publisher writes messages to JetStream with rate limiting and retry.
// Every message carries a Nats-Msg-Id header so the server can
// deduplicate redelivered publish attempts.
type Publisher struct {
	cfg     config.NATSConfig
	opts    *options
	logger  *slog.Logger
	metrics *publisherMetrics
	core    *metric.Metrics
	limiter *rate.Limiter
	retry   errors.RetryConfig

	nc *nats.Conn
	js jetstream.JetStream

	started   atomic.Bool
	connected atomic.Bool
	closeOnce sync.Once
}

// NewPublisher validates the configuration and builds a disconnected
// publisher. A zero PublishRate means unlimited.
func NewPublisher(cfg config.NATSConfig, opts ...Option) (*Publisher, error) {
	if len(cfg.URLs) == 0 {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "natsio", "NewPublisher", "server urls")
	}

	o := applyOptions(opts)
	metrics, err := newPublisherMetrics(o.registry, o.component)
	if err != nil {
		return nil, errors.WrapTransient(err, "natsio", "NewPublisher", "register metrics")
	}
	var core *metric.Metrics
	if o.registry != nil {
		core = o.registry.CoreMetrics()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.PublishRate > 0 {
		burst := cfg.PublishBurst
		if burst <= 0 {
			burst = max(int(cfg.PublishRate), 1)
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.PublishRate), burst)
	}

	return &Publisher{
		cfg:     cfg,
		opts:    o,
		logger:  o.logger,
		metrics: metrics,
		core:    core,
		limiter: limiter,
		retry:   cfg.Retry.ToRetry(),
	}, nil
}

// Connect dials the server and opens the JetStream context.
func (p *Publisher) Connect(ctx context.Context) error {
	if p.started.Swap(true) {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "natsio", "Connect", "connect publisher")
	}
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "natsio", "Connect", "connect publisher")
	}

	nc, err := nats.Connect(strings.Join(p.cfg.URLs, ","),
		nats.Name(p.opts.clientName),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return errors.WrapTransient(err, "natsio", "Connect", "dial server")
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return errors.WrapTransient(err, "natsio", "Connect", "open jetstream")
	}
	p.nc, p.js = nc, js
	p.connected.Store(true)
	if p.core != nil {
		p.core.RecordConnectorStatus("natsio", true)
	}

	p.logger.Info("nats publisher connected", "subject", p.cfg.Subject)
	return nil
}

// Publish sends one message, waiting on the rate limiter first and
// retrying transient failures with jittered backoff. An empty subject
// falls back to the configured subject.
func (p *Publisher) Publish(ctx context.Context, subject string, data []byte) error {
	if !p.connected.Load() {
		return errors.WrapInvalid(errors.ErrNotStarted, "natsio", "Publish", "publisher not connected")
	}
	if subject == "" {
		subject = p.cfg.Subject
	}
	if subject == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "natsio", "Publish", "publish subject")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return errors.WrapTransient(err, "natsio", "Publish", "await rate limit")
	}

	msg := &nats.Msg{Subject: subject, Data: data, Header: nats.Header{}}
	// The id stays fixed across retries so the server deduplicates
	// redelivered attempts.
	msg.Header.Set("Nats-Msg-Id", uuid.NewString())

	start := time.Now()
	attempt := 0
	for {
		_, err := p.js.PublishMsg(ctx, msg)
		if err == nil {
			elapsed := time.Since(start)
			p.metrics.recordPublish(nil, elapsed)
			if p.core != nil {
				p.core.RecordMessagePublished("natsio", subject)
				p.core.RecordPublishDuration("natsio", elapsed)
			}
			return nil
		}
		wrapped := errors.WrapTransient(err, "natsio", "Publish", "publish message")
		if !p.retry.ShouldRetry(wrapped, attempt) {
			p.metrics.recordPublish(wrapped, time.Since(start))
			return wrapped
		}
		attempt++
		select {
		case <-ctx.Done():
			p.metrics.recordPublish(ctx.Err(), time.Since(start))
			return errors.WrapTransient(ctx.Err(), "natsio", "Publish", "publish cancelled")
		case <-time.After(jitter(p.retry.BackoffDelay(attempt))):
		}
	}
}

// Close closes the connection. Publishes are synchronous, so nothing
// is in flight once callers have returned.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		if p.nc != nil {
			p.nc.Close()
			if p.core != nil {
				p.core.RecordConnectorStatus("natsio", false)
			}
			p.logger.Info("nats publisher closed")
		}
	})
	return nil
}

// PublishStream drains a stream through a worker pool of publishes.
// Submission applies backpressure when the pool's queue is full. The
// first failure is remembered and returned after the drain completes;
// later items are still attempted.
func PublishStream[T any](
	ctx context.Context,
	s *stream.Stream[T],
	pub *Publisher,
	subject string,
	encode func(T) ([]byte, error),
) error {
	var (
		once     sync.Once
		firstErr error
	)
	record := func(err error) {
		once.Do(func() { firstErr = err })
	}

	pool := worker.NewPool(pub.opts.workers, pub.opts.queueSize,
		func(ctx context.Context, item T) error {
			data, err := encode(item)
			if err != nil {
				err = errors.WrapInvalid(err, "natsio", "PublishStream", "encode item")
				record(err)
				return err
			}
			if err := pub.Publish(ctx, subject, data); err != nil {
				record(err)
				return err
			}
			return nil
		},
		worker.WithName[T]("nats-publish"),
		worker.WithLogger[T](pub.logger),
	)
	if err := pool.Start(ctx); err != nil {
		return err
	}

	streamErr := s.ForEach(func(item T) {
		for {
			err := pool.Submit(item)
			if err == nil {
				return
			}
			if !stderrors.Is(err, worker.ErrQueueFull) {
				record(err)
				return
			}
			select {
			case <-ctx.Done():
				record(errors.WrapTransient(ctx.Err(), "natsio", "PublishStream", "submit item"))
				return
			case <-time.After(time.Millisecond):
			}
		}
	})

	if err := pool.Stop(30 * time.Second); err != nil {
		record(err)
	}
	if streamErr != nil {
		return streamErr
	}
	return firstErr
}
