// Package worker provides a generic, bounded worker pool.
//
// # Overview
//
// A Pool[T] runs a fixed number of goroutines that drain a bounded
// queue of work items. Submit never blocks; when the queue is full the
// item is dropped and Submit returns ErrQueueFull, which doubles as the
// backpressure signal. Processors receive the context passed to Start,
// so cancelling it stops all processing.
//
//	pool := worker.NewPool(4, 256, func(ctx context.Context, job Job) error {
//	    return handle(ctx, job)
//	}, worker.WithName[Job]("publisher"))
//
//	if err := pool.Start(ctx); err != nil { ... }
//	defer pool.Stop(5 * time.Second)
//
//	if err := pool.Submit(job); errors.Is(err, worker.ErrQueueFull) {
//	    // shed load
//	}
//
// # Lifecycle
//
// A pool moves from new to started to stopped, once each. Stop closes
// the queue, refuses further submissions, and waits up to its timeout
// for workers to drain what was already queued. ErrStopTimeout means
// workers were still busy when the deadline passed; the pool is closed
// regardless.
//
// # Observability
//
// Counters for submitted, processed, failed, and dropped items are
// always collected and available through Stats. Prometheus export is
// opt-in via WithMetricsRegistry, adding queue depth, utilization, and
// a per-status processing duration histogram.
package worker
