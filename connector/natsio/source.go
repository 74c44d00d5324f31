package natsio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"

	"github.com/c360/streamkit/config"
	"github.com/c360/streamkit/errors"
	"github.com/c360/streamkit/metric"
	"github.com/c360/streamkit/pkg/ring"
	"github.com/c360/streamkit/spliterator"
	"github.com/c360/streamkit/stream"
)

const (
	defaultFetchBatch = 64
	defaultFetchWait  = 5 * time.Second
	statsInterval     = 30 * time.Second
)

// Source adapts a JetStream pull consumer into a stream source. It is
// created disconnected; Connect dials the server, creates the
// consumer, and starts the fetch pump.
type Source struct {
	cfg     config.NATSConfig
	opts    *options
	logger  *slog.Logger
	metrics *sourceMetrics
	core    *metric.Metrics

	fetchBatch int
	fetchWait  time.Duration
	subjectTag string

	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer

	ring         *ring.Ring[Msg]
	splitPermits atomic.Int32

	started   atomic.Bool
	connected atomic.Bool
	cancel    context.CancelFunc
	readCtx   context.Context
	group     *errgroup.Group

	errMu   sync.Mutex
	pumpErr error

	closeOnce sync.Once
}

// NewSource validates the configuration and builds a disconnected
// source.
func NewSource(cfg config.NATSConfig, opts ...Option) (*Source, error) {
	if len(cfg.URLs) == 0 {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "natsio", "NewSource", "server urls")
	}
	if cfg.Stream == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "natsio", "NewSource", "stream name")
	}

	o := applyOptions(opts)
	fetchBatch := cfg.FetchBatch
	if fetchBatch <= 0 {
		fetchBatch = defaultFetchBatch
	}
	fetchWait := cfg.FetchWait
	if fetchWait <= 0 {
		fetchWait = defaultFetchWait
	}
	capacity := o.bufferCapacity
	if capacity <= 0 {
		capacity = 2 * fetchBatch
	}

	metrics, err := newSourceMetrics(o.registry, o.component)
	if err != nil {
		return nil, errors.WrapTransient(err, "natsio", "NewSource", "register metrics")
	}
	var core *metric.Metrics
	if o.registry != nil {
		core = o.registry.CoreMetrics()
	}

	buf, err := ring.New(capacity, ring.WithOverflowPolicy[Msg](ring.Block))
	if err != nil {
		return nil, err
	}

	subjectTag := cfg.Subject
	if subjectTag == "" {
		subjectTag = ">"
	}

	s := &Source{
		cfg:        cfg,
		opts:       o,
		logger:     o.logger,
		metrics:    metrics,
		core:       core,
		fetchBatch: fetchBatch,
		fetchWait:  fetchWait,
		subjectTag: subjectTag,
		ring:       buf,
	}
	s.splitPermits.Store(int32(o.maxSplits))
	return s, nil
}

// Connect dials the server, creates or updates the pull consumer, and
// starts the fetch pump. The pump runs until Close, not until ctx
// ends; ctx governs only the connection steps.
func (s *Source) Connect(ctx context.Context) error {
	if s.started.Swap(true) {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "natsio", "Connect", "connect source")
	}

	nc, err := nats.Connect(strings.Join(s.cfg.URLs, ","),
		nats.Name(s.opts.clientName),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, derr error) {
			s.logger.Warn("nats connection lost", "error", derr)
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			if s.core != nil {
				s.core.RecordConnectorReconnect("natsio")
			}
			s.logger.Info("nats reconnected", "url", conn.ConnectedUrl())
		}),
	)
	if err != nil {
		return errors.WrapTransient(err, "natsio", "Connect", "dial server")
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return errors.WrapTransient(err, "natsio", "Connect", "open jetstream")
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, s.cfg.Stream, jetstream.ConsumerConfig{
		Durable:       s.cfg.Durable,
		FilterSubject: s.cfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		nc.Close()
		return errors.WrapTransient(
			fmt.Errorf("%w: %w", errors.ErrSubscriptionFailed, err),
			"natsio", "Connect", "create consumer")
	}
	s.nc, s.js, s.consumer = nc, js, consumer

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.readCtx = runCtx
	g, gctx := errgroup.WithContext(runCtx)
	s.group = g
	g.Go(func() error {
		defer s.ring.Close()
		err := s.fetchLoop(gctx)
		if err != nil {
			s.errMu.Lock()
			s.pumpErr = err
			s.errMu.Unlock()
		}
		return err
	})
	if s.metrics != nil {
		g.Go(func() error { return s.pollStats(gctx) })
	}
	s.connected.Store(true)
	if s.core != nil {
		s.core.RecordConnectorStatus("natsio", true)
	}

	s.logger.Info("nats source connected",
		"stream", s.cfg.Stream,
		"subject", s.cfg.Subject,
		"durable", s.cfg.Durable,
	)
	return nil
}

// fetchLoop pulls batches into the prefetch ring until ctx ends or the
// retry budget is spent. The ring's Block policy is the backpressure:
// a full ring stalls the pump, not the server.
func (s *Source) fetchLoop(ctx context.Context) error {
	retry := s.cfg.Retry.ToRetry()
	attempt := 0
	for {
		if ctx.Err() != nil {
			return nil
		}
		batch, err := s.consumer.Fetch(s.fetchBatch, jetstream.FetchMaxWait(s.fetchWait))
		if err == nil {
			for raw := range batch.Messages() {
				if werr := s.ring.Write(ctx, Msg{raw: raw, src: s}); werr != nil {
					return nil
				}
				s.metrics.recordFetched(s.ring.Size())
				if s.core != nil {
					s.core.RecordMessageReceived("natsio", s.subjectTag)
				}
			}
			err = batch.Error()
			if err == nil {
				attempt = 0
				continue
			}
		}

		wrapped := errors.WrapTransient(err, "natsio", "fetchLoop", "fetch batch")
		s.metrics.recordFetchError()
		if !retry.ShouldRetry(wrapped, attempt) {
			s.logger.Error("fetch retries exhausted",
				"stream", s.cfg.Stream,
				"attempts", attempt+1,
				"error", err,
			)
			return errors.WrapTransient(
				fmt.Errorf("%w after %d attempts: %w", errors.ErrMaxRetriesExceeded, attempt+1, err),
				"natsio", "fetchLoop", "fetch batch")
		}
		attempt++
		delay := jitter(retry.BackoffDelay(attempt))
		s.logger.Debug("fetch failed, backing off",
			"delay", delay,
			"attempt", attempt,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// pollStats publishes server-side consumer lag on an interval.
func (s *Source) pollStats(ctx context.Context) error {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := s.consumer.Info(ctx)
			if err != nil {
				s.logger.Debug("consumer info unavailable", "error", err)
				continue
			}
			s.metrics.updatePending(info.NumPending)
		}
	}
}

// Spliterator returns a spliterator over the source's messages. The
// source must be connected.
func (s *Source) Spliterator() spliterator.Spliterator[Msg] {
	if !s.connected.Load() {
		panic(errors.WrapInvalid(errors.ErrNotStarted, "natsio", "Spliterator", "source not connected"))
	}
	return &sourceSpliterator{src: s}
}

// Stream returns a stream over the source's messages. Closing the
// stream closes the source and drains the consumer.
func (s *Source) Stream() *stream.Stream[Msg] {
	return stream.FromSpliterator(s.Spliterator()).OnClose(s.Close)
}

// Err returns the pump's terminal error, set when the fetch loop gave
// up after exhausting its retries. A cleanly closed source reports
// nil.
func (s *Source) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.pumpErr
}

// Close stops the pump, drains in-flight goroutines, and closes the
// connection. It is idempotent and returns the pump's terminal error,
// if any.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		if !s.connected.Load() {
			return
		}
		s.cancel()
		_ = s.group.Wait()
		s.ring.Close()
		if s.nc != nil {
			s.nc.Close()
		}
		if s.core != nil {
			s.core.RecordConnectorStatus("natsio", false)
		}
		s.logger.Info("nats source closed", "stream", s.cfg.Stream)
	})
	return s.Err()
}

// jitter spreads a delay over [d/2, d) so concurrent sources do not
// retry in lockstep.
func jitter(d time.Duration) time.Duration {
	if d <= 1 {
		return d
	}
	half := d / 2
	return half + rand.N(half)
}

// sourceSpliterator drains the prefetch ring. Splitting shares the
// consumer: the server distributes fetched messages disjointly, so
// siblings never observe the same element.
type sourceSpliterator struct {
	src *Source
}

func (p *sourceSpliterator) TryAdvance(action func(Msg)) bool {
	msg, err := p.src.ring.Read(p.src.readCtx)
	if err != nil {
		return false
	}
	action(msg)
	return true
}

func (p *sourceSpliterator) ForEachRemaining(action func(Msg)) {
	for p.TryAdvance(action) {
	}
}

func (p *sourceSpliterator) TrySplit() spliterator.Spliterator[Msg] {
	if p.src.splitPermits.Add(-1) < 0 {
		p.src.splitPermits.Add(1)
		return nil
	}
	p.src.metrics.recordSplit()
	return &sourceSpliterator{src: p.src}
}

func (p *sourceSpliterator) EstimateSize() int64 { return math.MaxInt64 }

func (p *sourceSpliterator) Characteristics() spliterator.Characteristics {
	return spliterator.Concurrent | spliterator.Nonnull
}
