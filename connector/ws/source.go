package ws

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/c360/streamkit/config"
	"github.com/c360/streamkit/errors"
	"github.com/c360/streamkit/metric"
	"github.com/c360/streamkit/pkg/ring"
	"github.com/c360/streamkit/spliterator"
	"github.com/c360/streamkit/stream"
)

const (
	defaultBufferCapacity = 128
	defaultWriteTimeout   = 10 * time.Second
)

// Source reads data frames from one WebSocket connection into a
// bounded buffer and exposes the buffer as a stream source. Obtain the
// connection with Connect (client side) or Adopt (server side, after
// an upgrade).
type Source struct {
	cfg     config.WSConfig
	opts    *options
	logger  *slog.Logger
	metrics *sourceMetrics
	core    *metric.Metrics

	conn *websocket.Conn
	ring *ring.Ring[Frame]

	started   atomic.Bool
	connected atomic.Bool
	cancel    context.CancelFunc
	readCtx   context.Context
	group     *errgroup.Group

	errMu   sync.Mutex
	pumpErr error

	closeOnce sync.Once
	closeErr  error
}

// NewSource builds a source from configuration. The connection is not
// opened until Connect or Adopt.
func NewSource(cfg config.WSConfig, opts ...Option) (*Source, error) {
	o := applyOptions(opts)

	policy, err := overflowPolicy(cfg.OverflowPolicy)
	if err != nil {
		return nil, err
	}
	capacity := cfg.BufferCapacity
	if capacity <= 0 {
		capacity = defaultBufferCapacity
	}

	metrics, err := newSourceMetrics(o.registry, o.component)
	if err != nil {
		return nil, errors.WrapTransient(err, "ws", "NewSource", "register metrics")
	}

	ringOpts := []ring.Option[Frame]{ring.WithOverflowPolicy[Frame](policy)}
	var core *metric.Metrics
	if o.registry != nil {
		core = o.registry.CoreMetrics()
		ringOpts = append(ringOpts,
			ring.WithMetrics[Frame](o.registry, o.component+"_buffer"),
			ring.WithDropCallback[Frame](func(Frame) { core.RecordBufferDrop("ws") }),
		)
	}
	buf, err := ring.New(capacity, ringOpts...)
	if err != nil {
		return nil, err
	}

	return &Source{
		cfg:     cfg,
		opts:    o,
		logger:  o.logger,
		metrics: metrics,
		core:    core,
		ring:    buf,
	}, nil
}

func overflowPolicy(name string) (ring.OverflowPolicy, error) {
	switch name {
	case "", config.PolicyDropOldest:
		return ring.DropOldest, nil
	case config.PolicyDropNewest:
		return ring.DropNewest, nil
	case config.PolicyBlock:
		return ring.Block, nil
	default:
		return 0, errors.WrapInvalid(errors.ErrInvalidConfig, "ws", "NewSource",
			"overflow policy "+name)
	}
}

// Connect dials the configured URL and starts the read pump. The
// context governs the handshake only; the pump runs until Close.
func (s *Source) Connect(ctx context.Context) error {
	if s.started.Swap(true) {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "ws", "Connect", "source already started")
	}
	if s.cfg.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "ws", "Connect", "endpoint url")
	}

	conn, _, err := s.opts.dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return errors.WrapTransient(err, "ws", "Connect", "dial endpoint")
	}
	s.adopt(conn)
	s.logger.Info("websocket source connected", "url", s.cfg.URL)
	return nil
}

// Adopt takes over an already-established connection, typically one
// upgraded by a server handler, and starts the read pump. The
// configured URL is ignored.
func (s *Source) Adopt(conn *websocket.Conn) error {
	if s.started.Swap(true) {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "ws", "Adopt", "source already started")
	}
	if conn == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "ws", "Adopt", "nil connection")
	}
	s.adopt(conn)
	s.logger.Info("websocket source adopted connection", "remote", conn.RemoteAddr().String())
	return nil
}

func (s *Source) adopt(conn *websocket.Conn) {
	if s.cfg.ReadLimit > 0 {
		conn.SetReadLimit(s.cfg.ReadLimit)
	}
	s.conn = conn

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.readCtx = runCtx
	s.group, _ = errgroup.WithContext(runCtx)

	s.group.Go(func() error {
		err := s.readPump(runCtx)
		if err != nil {
			s.errMu.Lock()
			s.pumpErr = err
			s.errMu.Unlock()
		}
		return err
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

// readPump moves frames from the connection into the ring until the
// peer closes, the connection fails, or Close cancels the context.
// The ring closes on the way out so consumers drain and then end.
func (s *Source) readPump(ctx context.Context) error {
	defer s.ring.Close()

	if s.cfg.PingInterval > 0 {
		wait := 2 * s.cfg.PingInterval
		_ = s.conn.SetReadDeadline(time.Now().Add(wait))
		s.conn.SetPongHandler(func(string) error {
			return s.conn.SetReadDeadline(time.Now().Add(wait))
		})
	}

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket peer closed", "reason", err.Error())
				return nil
			}
			s.metrics.recordReadError()
			wrapped := errors.WrapTransient(err, "ws", "readPump", "read frame")
			s.logger.Error("websocket read failed", "error", wrapped)
			return wrapped
		}

		// Write handles the overflow policy: it blocks under Block and
		// drops per policy otherwise.
		frame := Frame{Type: msgType, Data: data}
		if err := s.ring.Write(ctx, frame); err != nil {
			return nil
		}
		s.metrics.recordReceived(s.ring.Size())
		if s.core != nil {
			s.core.RecordMessageReceived("ws", frame.kind())
		}
	}
}

// pingLoop sends keepalive pings. WriteControl is safe to call
// concurrently with readers, so no writer lock is needed.
func (s *Source) pingLoop(ctx context.Context) {
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
		}
	}
}

func (s *Source) writeTimeout() time.Duration {
	if s.cfg.WriteTimeout > 0 {
		return s.cfg.WriteTimeout
	}
	return defaultWriteTimeout
}

// Spliterator returns a traversal over inbound frames. It panics when
// the source is not connected. Frames keep connection order and the
// spliterator never splits.
func (s *Source) Spliterator() spliterator.Spliterator[Frame] {
	if !s.connected.Load() {
		panic(errors.WrapInvalid(errors.ErrNotStarted, "ws", "Spliterator", "source not connected"))
	}
	return &wsSpliterator{src: s}
}

// Stream returns a stream over inbound frames. Closing the stream
// closes the source.
func (s *Source) Stream() *stream.Stream[Frame] {
	return stream.FromSpliterator(s.Spliterator()).OnClose(s.Close)
}

// Err reports the terminal pump error, nil after a clean peer close.
func (s *Source) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.pumpErr
}

// Close sends a close frame, tears the connection down, and waits for
// the pump. Safe to call more than once.
func (s *Source) Close() error {
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
		_ = s.ring.Close()
		if s.core != nil {
			s.core.RecordConnectorStatus("ws", false)
		}
		s.logger.Info("websocket source closed")
		s.closeErr = s.Err()
	})
	return s.closeErr
}

// wsSpliterator drains the source's buffer. A WebSocket connection is
// a single ordered frame sequence, so there is nothing to split.
type wsSpliterator struct {
	src *Source
}

func (w *wsSpliterator) TryAdvance(action func(Frame)) bool {
	frame, err := w.src.ring.Read(w.src.readCtx)
	if err != nil {
		return false
	}
	action(frame)
	return true
}

func (w *wsSpliterator) ForEachRemaining(action func(Frame)) {
	for w.TryAdvance(action) {
	}
}

func (w *wsSpliterator) TrySplit() spliterator.Spliterator[Frame] {
	return nil
}

func (w *wsSpliterator) EstimateSize() int64 {
	return math.MaxInt64
}

func (w *wsSpliterator) Characteristics() spliterator.Characteristics {
	return spliterator.Ordered | spliterator.Nonnull
}
