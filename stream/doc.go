// Package stream provides lazy, composable, optionally parallel
// pipelines over generic element sequences.
//
// # Overview
//
// A pipeline is built from a source, zero or more intermediate
// operations, and one terminal operation:
//
//	total, err := stream.SumFloat(
//		stream.Map(
//			stream.FromSlice(readings).
//				Filter(reading.Valid).
//				Parallel(),
//			reading.Celsius))
//
// Nothing runs until the terminal operation. Intermediate operations
// only link stages; the terminal fuses every stage into a single sink
// chain and traverses the source exactly once, pushing each element
// through the whole chain before the next is read.
//
// # Architecture
//
// Three protocols cooperate:
//
//	spliterator.Spliterator[T]   pull: TryAdvance / TrySplit
//	Sink[T]                      push: Begin / Accept / End / Cancelled
//	pipe[T] (internal)           stage chain linking the two
//
// Sequential evaluation pushes the source through the fused chain.
// Parallel evaluation first decomposes the source with TrySplit into a
// bounded set of leaves, then drives an independent sink chain per
// leaf on a capped goroutine group, and finally merges per-leaf
// results in encounter order. Stateful stages (Sorted, Distinct,
// Limit, TakeWhile) re-source the pipeline at their boundary, usually
// by materializing the upstream into an immutable node tree.
//
// # One-shot semantics
//
// A stream may be evaluated once. The first terminal claims the
// pipeline atomically; later terminals fail with
// errors.ErrStreamConsumed. Close also consumes the pipeline and runs
// OnClose handlers in reverse registration order.
//
// # Error handling
//
// Terminal operations return errors. Callbacks that need to fail use
// the fallible variants (MapErr, ForEachErr); their errors abort the
// traversal through a panic carrier and surface, classified, from the
// terminal. Cancellation of the attached context surfaces as a
// Transient error. Panics that are not carriers cross parallel
// goroutine boundaries and re-raise on the caller unchanged.
//
// # Short-circuiting
//
// Limit, TakeWhile, the quantified matches, and the find terminals
// stop traversal early. Infinite sources (Generate, Iterate) are fine
// as long as one short-circuiting stage bounds them. In parallel runs
// a resolved short-circuit quiesces the remaining leaves at their next
// poll, so over-production after resolution is bounded.
//
// # Design Decisions
//
//   - Type-changing operations (Map, FlatMap, Fold, Collect) are free
//     functions because Go methods cannot introduce type parameters.
//   - Element values, never pointers into internal buffers, cross
//     stage boundaries; buffers are owned by a single evaluation.
//   - Parallel leaf sinks are constructed on the caller's goroutine
//     before traversal starts, so operation state needs no locking.
//   - Evaluations log start and finish at Debug with a uuid evaluation
//     id and record outcome, duration, leaf count, and short-circuits
//     to an optional metric.Metrics.
package stream
