package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Pool is a generic worker pool processing items of type T on a fixed
// set of goroutines fed from a bounded queue.
type Pool[T any] struct {
	name      string
	workers   int
	queueSize int
	processor func(context.Context, T) error
	logger    *slog.Logger

	workChan chan T
	stopCh   chan struct{}
	wg       sync.WaitGroup

	// lifecycleMu guards started/stopped and orders Submit against the
	// queue close in Stop. Submitters share the read side.
	lifecycleMu sync.RWMutex
	started     bool
	stopped     bool

	submitted atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64

	metrics *poolMetrics
}

// NewPool creates a pool with the given worker count, queue size, and
// processor. Non-positive counts fall back to 10 workers and a queue of
// 1000. A nil processor panics, the pool is unusable without one.
func NewPool[T any](workers, queueSize int, processor func(context.Context, T) error, opts ...Option[T]) *Pool[T] {
	if workers <= 0 {
		workers = 10
	}
	if queueSize <= 0 {
		queueSize = 1000
	}
	if processor == nil {
		panic(ErrNilProcessor)
	}

	p := &Pool[T]{
		name:      "pool",
		workers:   workers,
		queueSize: queueSize,
		processor: processor,
		logger:    slog.Default(),
		workChan:  make(chan T, queueSize),
		stopCh:    make(chan struct{}),
	}

	cfg := applyOptions(opts...)
	if cfg.name != "" {
		p.name = cfg.name
	}
	if cfg.logger != nil {
		p.logger = cfg.logger
	}

	if cfg.metricsReg != nil && cfg.component != "" {
		m, err := newPoolMetrics(cfg.metricsReg, cfg.component)
		if err != nil {
			p.logger.Warn("worker pool metrics registration failed",
				"pool", p.name, "error", err)
		} else {
			p.metrics = m
		}
	}

	return p
}

// Start launches the workers. The context bounds all processing; when
// it is cancelled workers exit without draining the queue.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.started {
		return ErrPoolAlreadyStarted
	}
	if p.stopped {
		return ErrPoolStopped
	}

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	if p.metrics != nil {
		p.wg.Add(1)
		go p.metricsUpdater(ctx)
	}

	p.started = true
	p.logger.Info("worker pool started",
		"pool", p.name, "workers", p.workers, "queue_size", p.queueSize)
	return nil
}

// Submit enqueues work without blocking. A full queue drops the item
// and returns ErrQueueFull.
func (p *Pool[T]) Submit(work T) error {
	p.lifecycleMu.RLock()
	defer p.lifecycleMu.RUnlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.workChan <- work:
		p.submitted.Add(1)
		if p.metrics != nil {
			p.metrics.recordSubmit(len(p.workChan))
		}
		return nil
	default:
		p.dropped.Add(1)
		if p.metrics != nil {
			p.metrics.recordDrop()
		}
		return ErrQueueFull
	}
}

// Stop closes the queue and waits up to timeout for workers to drain
// it. The pool refuses new work immediately; ErrStopTimeout reports
// workers that did not finish in time. Stopping a pool that never
// started is a no-op.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	if !p.started || p.stopped {
		p.lifecycleMu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.workChan)
	close(p.stopCh)
	p.lifecycleMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		p.logger.Info("worker pool stopped", "pool", p.name,
			"processed", p.processed.Load(), "failed", p.failed.Load())
		return nil
	case <-timer.C:
		p.logger.Warn("worker pool stop timed out", "pool", p.name,
			"timeout", timeout)
		return ErrStopTimeout
	}
}

// Stats returns a snapshot of pool counters.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Workers:    p.workers,
		QueueSize:  p.queueSize,
		QueueDepth: len(p.workChan),
		Submitted:  p.submitted.Load(),
		Processed:  p.processed.Load(),
		Failed:     p.failed.Load(),
		Dropped:    p.dropped.Load(),
	}
}

// PoolStats is a point-in-time snapshot of pool activity.
type PoolStats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Submitted  int64 `json:"submitted"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

// worker drains the queue until it closes or the context ends.
func (p *Pool[T]) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case work, ok := <-p.workChan:
			if !ok {
				return
			}

			start := time.Now()
			err := p.processor(ctx, work)
			duration := time.Since(start)

			p.processed.Add(1)
			if err != nil {
				p.failed.Add(1)
				p.logger.Debug("work item failed",
					"pool", p.name, "error", err)
			}
			if p.metrics != nil {
				p.metrics.recordResult(err, duration)
			}
		}
	}
}

// metricsUpdater refreshes queue depth and utilization once a second.
func (p *Pool[T]) metricsUpdater(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.metrics.updateQueue(len(p.workChan), p.queueSize)
		}
	}
}
