package worker

import "errors"

// Sentinel errors for pool lifecycle and submission.
var (
	// ErrPoolNotStarted reports a Submit before Start.
	ErrPoolNotStarted = errors.New("worker pool not started")

	// ErrPoolStopped reports an operation on a stopped pool.
	ErrPoolStopped = errors.New("worker pool stopped")

	// ErrPoolAlreadyStarted reports a second Start.
	ErrPoolAlreadyStarted = errors.New("worker pool already started")

	// ErrQueueFull reports a Submit that found the queue at capacity.
	ErrQueueFull = errors.New("worker pool queue full")

	// ErrNilProcessor reports construction without a processor.
	ErrNilProcessor = errors.New("processor function cannot be nil")

	// ErrStopTimeout reports workers still running when the Stop
	// timeout expired.
	ErrStopTimeout = errors.New("timeout waiting for workers to stop")
)
