// Package ring provides a generic, thread-safe bounded ring buffer.
//
// A Ring[T] holds up to a fixed number of items and applies a
// configurable OverflowPolicy when full:
//   - DropOldest evicts the oldest buffered item to admit the new one
//   - DropNewest discards the incoming item
//   - Block makes writers wait for space
//
// Readers can poll with TryRead, drain with ReadBatch, or wait with the
// context-aware Read. After Close, buffered items remain readable until
// the ring drains; subsequent reads and all writes fail with
// ErrBufferClosed. Statistics are always collected; Prometheus metrics
// are opt-in via WithMetrics.
package ring

import (
	"context"
	"sync"

	"github.com/c360/streamkit/errors"
)

// OverflowPolicy selects how a full ring treats an incoming item.
type OverflowPolicy int

const (
	// DropOldest evicts the oldest buffered item to make room.
	DropOldest OverflowPolicy = iota

	// DropNewest discards the incoming item and keeps the buffer as is.
	DropNewest

	// Block makes Write wait until a reader frees a slot.
	Block
)

// String returns the policy name.
func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "DropOldest"
	case DropNewest:
		return "DropNewest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// DropCallback observes items discarded by the overflow policy or by
// Clear. Callbacks run outside the ring lock.
type DropCallback[T any] func(item T)

// Ring is a fixed-capacity FIFO buffer safe for concurrent use.
type Ring[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	size     int
	head     int // next write slot
	tail     int // next read slot
	closed   bool

	notEmpty *sync.Cond
	notFull  *sync.Cond

	stats   *Statistics
	metrics *ringMetrics
	opts    *ringOptions[T]
}

// New creates a ring with the given capacity. Capacity must be
// positive. Returns an error if metrics registration fails when
// metrics are requested.
func New[T any](capacity int, options ...Option[T]) (*Ring[T], error) {
	if capacity <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "ring", "New", "non-positive capacity")
	}

	opts := applyOptions(options...)

	var metrics *ringMetrics
	if opts.metricsReg != nil {
		var err error
		metrics, err = newRingMetrics(opts.metricsReg, opts.component)
		if err != nil {
			return nil, errors.WrapTransient(err, "ring", "New", "register metrics")
		}
	}

	r := &Ring[T]{
		items:    make([]T, capacity),
		capacity: capacity,
		stats:    NewStatistics(),
		metrics:  metrics,
		opts:     opts,
	}
	r.notEmpty = sync.NewCond(&r.mu)
	r.notFull = sync.NewCond(&r.mu)
	return r, nil
}

// TryWrite adds an item without waiting. Under the Block policy a full
// ring fails with ErrBufferFull; the drop policies never fail on a
// full ring, they discard per policy and report the casualty to the
// drop callback.
func (r *Ring[T]) TryWrite(item T) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.WrapInvalid(errors.ErrBufferClosed, "ring", "TryWrite", "ring closed")
	}

	var dropped T
	var haveDrop bool

	if r.size == r.capacity {
		switch r.opts.policy {
		case DropNewest:
			r.recordDrop()
			r.mu.Unlock()
			if r.opts.dropFn != nil {
				r.opts.dropFn(item)
			}
			return nil

		case Block:
			r.mu.Unlock()
			return errors.WrapTransient(errors.ErrBufferFull, "ring", "TryWrite", "ring full")

		default: // DropOldest
			dropped = r.evictOldest()
			haveDrop = true
		}
	}

	r.push(item)
	r.mu.Unlock()

	if haveDrop && r.opts.dropFn != nil {
		r.opts.dropFn(dropped)
	}
	return nil
}

// Write adds an item, waiting for space when the policy is Block. The
// drop policies never wait, so Write degenerates to TryWrite for them.
// Waiting ends early when ctx is cancelled or the ring closes.
func (r *Ring[T]) Write(ctx context.Context, item T) error {
	if r.opts.policy != Block {
		return r.TryWrite(item)
	}

	// The wake-up must hold the lock so it cannot slip between a
	// waiter's cancellation check and its Wait.
	stop := context.AfterFunc(ctx, func() {
		r.mu.Lock()
		r.notFull.Broadcast()
		r.mu.Unlock()
	})
	defer stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	for r.size == r.capacity && !r.closed {
		if err := ctx.Err(); err != nil {
			return errors.WrapTransient(err, "ring", "Write", "wait for space")
		}
		r.notFull.Wait()
	}
	if r.closed {
		return errors.WrapInvalid(errors.ErrBufferClosed, "ring", "Write", "ring closed")
	}

	r.push(item)
	return nil
}

// Read removes and returns the oldest item, waiting until one arrives,
// ctx is cancelled, or the ring is closed and drained.
func (r *Ring[T]) Read(ctx context.Context) (T, error) {
	var zero T

	stop := context.AfterFunc(ctx, func() {
		r.mu.Lock()
		r.notEmpty.Broadcast()
		r.mu.Unlock()
	})
	defer stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	for r.size == 0 && !r.closed {
		if err := ctx.Err(); err != nil {
			return zero, errors.WrapTransient(err, "ring", "Read", "wait for item")
		}
		r.notEmpty.Wait()
	}
	if r.size == 0 {
		return zero, errors.WrapInvalid(errors.ErrBufferClosed, "ring", "Read", "ring closed and drained")
	}

	return r.take(), nil
}

// TryRead removes and returns the oldest item without waiting. The
// second return is false when the ring holds nothing.
func (r *Ring[T]) TryRead() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.take(), true
}

// ReadBatch removes and returns up to max buffered items without
// waiting. The result may be shorter than max and is nil when the ring
// holds nothing.
func (r *Ring[T]) ReadBatch(max int) []T {
	if max <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return nil
	}

	n := min(max, r.size)
	out := make([]T, n)
	var zero T
	for i := range out {
		out[i] = r.items[r.tail]
		r.items[r.tail] = zero
		r.tail = (r.tail + 1) % r.capacity
		r.size--
		r.stats.Read()
	}
	r.stats.UpdateSize(int64(r.size))
	if r.metrics != nil {
		r.metrics.recordBatchRead(n, r.size, r.capacity)
	}

	r.notFull.Broadcast()
	return out
}

// Peek returns the oldest item without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.size == 0 {
		return zero, false
	}

	r.stats.Peek()
	if r.metrics != nil {
		r.metrics.recordPeek()
	}
	return r.items[r.tail], true
}

// Size returns the current number of buffered items.
func (r *Ring[T]) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Capacity returns the fixed capacity of the ring.
func (r *Ring[T]) Capacity() int {
	return r.capacity
}

// Clear discards all buffered items, reporting each to the drop
// callback, and wakes blocked writers.
func (r *Ring[T]) Clear() {
	r.mu.Lock()

	var dropped []T
	if r.opts.dropFn != nil && r.size > 0 {
		dropped = make([]T, 0, r.size)
		for i := 0; i < r.size; i++ {
			dropped = append(dropped, r.items[(r.tail+i)%r.capacity])
		}
	}

	clear(r.items)
	r.head, r.tail, r.size = 0, 0, 0

	r.stats.UpdateSize(0)
	if r.metrics != nil {
		r.metrics.updateSize(0, r.capacity)
	}

	r.notFull.Broadcast()
	r.mu.Unlock()

	for _, item := range dropped {
		r.opts.dropFn(item)
	}
}

// Stats returns the always-on statistics tracker.
func (r *Ring[T]) Stats() *Statistics {
	return r.stats
}

// Close marks the ring closed and wakes all waiters. Buffered items
// stay readable until drained. Close is idempotent.
func (r *Ring[T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	r.notEmpty.Broadcast()
	r.notFull.Broadcast()
	return nil
}

// push appends under the lock and wakes one reader.
func (r *Ring[T]) push(item T) {
	r.items[r.head] = item
	r.head = (r.head + 1) % r.capacity
	r.size++

	r.stats.Write()
	r.stats.UpdateSize(int64(r.size))
	if r.metrics != nil {
		r.metrics.recordWrite(r.size, r.capacity)
	}

	r.notEmpty.Signal()
}

// take removes the oldest item under the lock and wakes one writer.
func (r *Ring[T]) take() T {
	var zero T
	item := r.items[r.tail]
	r.items[r.tail] = zero
	r.tail = (r.tail + 1) % r.capacity
	r.size--

	r.stats.Read()
	r.stats.UpdateSize(int64(r.size))
	if r.metrics != nil {
		r.metrics.recordRead(r.size, r.capacity)
	}

	r.notFull.Signal()
	return item
}

// evictOldest removes the oldest item under the lock for an overflow
// eviction. Unlike take it counts as a drop, not a read.
func (r *Ring[T]) evictOldest() T {
	var zero T
	item := r.items[r.tail]
	r.items[r.tail] = zero
	r.tail = (r.tail + 1) % r.capacity
	r.size--

	r.recordDrop()
	return item
}

func (r *Ring[T]) recordDrop() {
	r.stats.Overflow()
	r.stats.Drop()
	if r.metrics != nil {
		r.metrics.recordOverflow()
		r.metrics.recordDrop()
	}
}
