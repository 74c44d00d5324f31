package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/c360/streamkit/metric"
)

type testJob struct {
	id   int
	fail bool
}

func TestNewPoolDefaults(t *testing.T) {
	processor := func(context.Context, testJob) error { return nil }

	pool := NewPool(5, 100, processor)
	if pool.workers != 5 {
		t.Errorf("expected 5 workers, got %d", pool.workers)
	}
	if pool.queueSize != 100 {
		t.Errorf("expected queue size 100, got %d", pool.queueSize)
	}

	pool = NewPool(0, 0, processor)
	if pool.workers != 10 {
		t.Errorf("expected default 10 workers, got %d", pool.workers)
	}
	if pool.queueSize != 1000 {
		t.Errorf("expected default queue size 1000, got %d", pool.queueSize)
	}
}

func TestNewPoolNilProcessorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil processor")
		}
	}()
	NewPool[testJob](5, 100, nil)
}

func TestPoolStartStop(t *testing.T) {
	var processed atomic.Int64
	pool := NewPool(2, 10, func(context.Context, testJob) error {
		processed.Add(1)
		return nil
	})

	ctx := context.Background()
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := pool.Start(ctx); !errors.Is(err, ErrPoolAlreadyStarted) {
		t.Errorf("second start: got %v, want ErrPoolAlreadyStarted", err)
	}

	for i := 0; i < 5; i++ {
		if err := pool.Submit(testJob{id: i}); err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
	}

	// Stop drains queued work before returning.
	if err := pool.Stop(5 * time.Second); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if got := processed.Load(); got != 5 {
		t.Errorf("processed %d items, want 5", got)
	}

	if err := pool.Submit(testJob{id: 99}); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("submit after stop: got %v, want ErrPoolStopped", err)
	}
	if err := pool.Stop(time.Second); err != nil {
		t.Errorf("second stop: got %v, want nil", err)
	}
}

func TestPoolSubmitBeforeStart(t *testing.T) {
	pool := NewPool(1, 1, func(context.Context, testJob) error { return nil })
	if err := pool.Submit(testJob{}); !errors.Is(err, ErrPoolNotStarted) {
		t.Errorf("got %v, want ErrPoolNotStarted", err)
	}
}

func TestPoolQueueFull(t *testing.T) {
	gate := make(chan struct{})
	pool := NewPool(1, 2, func(_ context.Context, _ testJob) error {
		<-gate
		return nil
	})

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// With one gated worker at most three submissions can land: one
	// in flight plus two queued.
	var accepted int
	var full error
	for i := 0; i < 10; i++ {
		if err := pool.Submit(testJob{id: i}); err != nil {
			full = err
			break
		}
		accepted++
	}

	if !errors.Is(full, ErrQueueFull) {
		t.Fatalf("got %v, want ErrQueueFull", full)
	}
	if accepted < 2 || accepted > 3 {
		t.Errorf("accepted %d submissions, want 2 or 3", accepted)
	}
	if stats := pool.Stats(); stats.Dropped == 0 {
		t.Error("stats should count the dropped item")
	}

	close(gate)
	if err := pool.Stop(5 * time.Second); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestPoolCountsProcessorFailures(t *testing.T) {
	boom := errors.New("boom")
	pool := NewPool(2, 10, func(_ context.Context, job testJob) error {
		if job.fail {
			return boom
		}
		return nil
	})

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := pool.Submit(testJob{id: i, fail: i%2 == 0}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	if err := pool.Stop(5 * time.Second); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	stats := pool.Stats()
	if stats.Processed != 4 {
		t.Errorf("processed = %d, want 4", stats.Processed)
	}
	if stats.Failed != 2 {
		t.Errorf("failed = %d, want 2", stats.Failed)
	}
	if stats.Submitted != 4 {
		t.Errorf("submitted = %d, want 4", stats.Submitted)
	}
}

func TestPoolContextCancellationStopsWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(2, 10, func(ctx context.Context, _ testJob) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err := pool.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := pool.Submit(testJob{id: i}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	cancel()
	if err := pool.Stop(2 * time.Second); err != nil {
		t.Fatalf("stop after cancel failed: %v", err)
	}
}

func TestPoolConcurrentSubmissions(t *testing.T) {
	var processed atomic.Int64
	pool := NewPool(4, 1000, func(context.Context, testJob) error {
		processed.Add(1)
		return nil
	})

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	const goroutines = 8
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				if err := pool.Submit(testJob{id: i}); err != nil {
					t.Errorf("submit failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if err := pool.Stop(5 * time.Second); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	if got := processed.Load(); got != goroutines*perGoroutine {
		t.Errorf("processed %d items, want %d", got, goroutines*perGoroutine)
	}
}

func TestPoolStatsSnapshot(t *testing.T) {
	pool := NewPool(3, 7, func(context.Context, testJob) error { return nil })

	stats := pool.Stats()
	if stats.Workers != 3 || stats.QueueSize != 7 {
		t.Errorf("stats = %+v, want workers 3 queue 7", stats)
	}
	if stats.Submitted != 0 || stats.Dropped != 0 {
		t.Errorf("fresh pool should have zero counters, got %+v", stats)
	}
}

func TestPoolStopWithMetricsEnabled(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	pool := NewPool(2, 10,
		func(context.Context, testJob) error { return nil },
		WithMetricsRegistry[testJob](registry, "test_pool"),
		WithName[testJob]("test_pool"),
	)

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := pool.Submit(testJob{id: 1}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Stop must also terminate the metrics updater even though the
	// start context is never cancelled.
	if err := pool.Stop(2 * time.Second); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	families, err := registry.PrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	if !names["streamkit_worker_submitted_total"] {
		t.Error("submitted counter not registered")
	}
	if !names["streamkit_worker_queue_depth"] {
		t.Error("queue depth gauge not registered")
	}
}
