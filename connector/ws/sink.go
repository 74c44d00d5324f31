package ws

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/c360/streamkit/config"
	"github.com/c360/streamkit/errors"
	"github.com/c360/streamkit/metric"
	"github.com/c360/streamkit/stream"
)

// Sink writes frames to one WebSocket connection with a per-frame
// write deadline, an optional send rate limit, and ping keepalive. A
// background reader discards inbound data so control frames keep being
// processed on a write-only connection.
type Sink struct {
	cfg     config.WSConfig
	opts    *options
	logger  *slog.Logger
	metrics *sinkMetrics
	core    *metric.Metrics
	limiter *rate.Limiter

	conn    *websocket.Conn
	writeMu sync.Mutex

	started   atomic.Bool
	connected atomic.Bool
	cancel    context.CancelFunc
	group     *errgroup.Group

	closeOnce sync.Once
}

// NewSink builds a sink from configuration. The connection is not
// opened until Connect or Adopt.
func NewSink(cfg config.WSConfig, opts ...Option) (*Sink, error) {
	o := applyOptions(opts)

	metrics, err := newSinkMetrics(o.registry, o.component)
	if err != nil {
		return nil, errors.WrapTransient(err, "ws", "NewSink", "register metrics")
	}
	var core *metric.Metrics
	if o.registry != nil {
		core = o.registry.CoreMetrics()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if o.sendRate > 0 {
		burst := o.sendBurst
		if burst <= 0 {
			burst = max(int(o.sendRate), 1)
		}
		limiter = rate.NewLimiter(rate.Limit(o.sendRate), burst)
	}

	return &Sink{
		cfg:     cfg,
		opts:    o,
		logger:  o.logger,
		metrics: metrics,
		core:    core,
		limiter: limiter,
	}, nil
}

// Connect dials the configured URL and starts the keepalive pumps. The
// context governs the handshake only.
func (s *Sink) Connect(ctx context.Context) error {
	if s.started.Swap(true) {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "ws", "Connect", "sink already started")
	}
	if s.cfg.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "ws", "Connect", "endpoint url")
	}

	conn, _, err := s.opts.dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return errors.WrapTransient(err, "ws", "Connect", "dial endpoint")
	}
	s.adopt(conn)
	s.logger.Info("websocket sink connected", "url", s.cfg.URL)
	return nil
}

// Adopt takes over an already-established connection and starts the
// keepalive pumps. The configured URL is ignored.
func (s *Sink) Adopt(conn *websocket.Conn) error {
	if s.started.Swap(true) {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "ws", "Adopt", "sink already started")
	}
	if conn == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "ws", "Adopt", "nil connection")
	}
	s.adopt(conn)
	s.logger.Info("websocket sink adopted connection", "remote", conn.RemoteAddr().String())
	return nil
}

func (s *Sink) adopt(conn *websocket.Conn) {
	s.conn = conn

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.group, _ = errgroup.WithContext(runCtx)

	s.group.Go(func() error {
		s.discardInbound(runCtx)
		return nil
	})
	if s.cfg.PingInterval > 0 {
		s.group.Go(func() error {
			s.pingLoop(runCtx)
			return nil
		})
	}
	s.connected.Store(true)
	if s.core != nil {
		s.core.RecordConnectorStatus("ws", true)
	}
}

// discardInbound reads and drops incoming messages. Control frames,
// including the pongs that answer keepalive pings, are only processed
// during reads.
func (s *Sink) discardInbound(ctx context.Context) {
	if s.cfg.PingInterval > 0 {
		wait := 2 * s.cfg.PingInterval
		_ = s.conn.SetReadDeadline(time.Now().Add(wait))
		s.conn.SetPongHandler(func(string) error {
			return s.conn.SetReadDeadline(time.Now().Add(wait))
		})
	}
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if ctx.Err() == nil {
				s.logger.Debug("websocket sink reader stopped", "reason", err.Error())
			}
			return
		}
	}
}

func (s *Sink) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.writeTimeout())
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("websocket ping failed", "error", err)
				return
			}
			s.metrics.recordPing()
		}
	}
}

func (s *Sink) writeTimeout() time.Duration {
	if s.cfg.WriteTimeout > 0 {
		return s.cfg.WriteTimeout
	}
	return defaultWriteTimeout
}

// Send writes one frame. It waits for the rate limiter, applies the
// write deadline, and classifies failures as transient.
func (s *Sink) Send(ctx context.Context, f Frame) error {
	if !s.connected.Load() {
		return errors.WrapInvalid(errors.ErrNotStarted, "ws", "Send", "sink not connected")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return errors.WrapTransient(err, "ws", "Send", "await rate limit")
	}

	start := time.Now()
	s.writeMu.Lock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout()))
	err := s.conn.WriteMessage(f.Type, f.Data)
	s.writeMu.Unlock()
	elapsed := time.Since(start)
	s.metrics.recordSend(err, elapsed)

	if err != nil {
		return errors.WrapTransient(err, "ws", "Send", "write frame")
	}
	if s.core != nil {
		s.core.RecordMessagePublished("ws", f.kind())
		s.core.RecordPublishDuration("ws", elapsed)
	}
	return nil
}

// Close sends a close frame, tears the connection down, and waits for
// the pumps. Safe to call more than once.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		if !s.connected.Load() {
			return
		}
		s.cancel()
		deadline := time.Now().Add(s.writeTimeout())
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = s.conn.Close()
		_ = s.group.Wait()
		if s.core != nil {
			s.core.RecordConnectorStatus("ws", false)
		}
		s.logger.Info("websocket sink closed")
	})
	return nil
}

// SendStream drains s into the sink, one binary frame per element.
// Sequential streams keep encounter order on the wire. Use Send
// directly for text frames. The first failure is returned; elements
// after it are skipped.
func SendStream[T any](ctx context.Context, s *stream.Stream[T], sink *Sink, encode func(T) ([]byte, error)) error {
	var mu sync.Mutex
	var firstErr error
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}
	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	err := s.ForEach(func(item T) {
		if failed() {
			return
		}
		data, encErr := encode(item)
		if encErr != nil {
			record(errors.WrapInvalid(encErr, "ws", "SendStream", "encode item"))
			return
		}
		if sendErr := sink.Send(ctx, Binary(data)); sendErr != nil {
			record(sendErr)
		}
	})
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	return firstErr
}
