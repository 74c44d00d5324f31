// Package streamkit provides a lazy, composable stream pipeline engine
// for Go, combining a generic operator core with splittable sources for
// parallel evaluation.
//
// # Philosophy: Build Lazily, Evaluate Once
//
// StreamKit pipelines are descriptions, not computations. Building a
// pipeline allocates a few small stage records and touches no data.
// All work happens inside a single terminal operation, which walks the
// source exactly once and pushes elements through a fused chain of
// per-stage callbacks:
//
//   - Lazy: intermediate operations record intent and return immediately
//   - One-shot: a pipeline is consumed by exactly one terminal operation
//   - Fused: stages compose into one callback chain, no per-stage buffers
//   - Short-circuiting: searches and limits stop pulling as soon as
//     the answer is known
//   - Parallel on demand: the same pipeline runs sequentially or across
//     goroutines by splitting its source
//
// StreamKit MUST NOT contain:
//   - Domain-specific element types (events, entities, records)
//   - Business rules or enrichment logic
//   - Assumptions about where elements come from or go to
//
// Domain code belongs in the modules that embed StreamKit.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│        Terminal Operations          │  ToSlice, Reduce, Count,
//	│   (drive the source, fuse stages)   │  ForEach, FindFirst, ...
//	└─────────────────────────────────────┘
//	           ↓ evaluates
//	┌─────────────────────────────────────┐
//	│         Stage Pipeline              │  Filter, Map, Limit,
//	│  (lazy, linked, reusable builders)  │  Sorted, Distinct, ...
//	└─────────────────────────────────────┘
//	           ↓ pulls from
//	┌─────────────────────────────────────┐
//	│         Spliterators                │  Split for parallelism,
//	│  (traverse, split, characteristics) │  advance for sequential
//	└─────────────────────────────────────┘
//
// A spliterator is the single source abstraction: it traverses
// elements one at a time or in bulk, reports structural
// characteristics (sized, ordered, distinct, sorted), and optionally
// splits off a prefix for another goroutine to work on. Everything
// that can produce elements (slices, channels, iterators, generators,
// network connectors) adapts to this one interface.
//
// # Framework Packages
//
// Core engine:
//   - stream: the public pipeline API and evaluation engine
//   - spliterator: the source protocol plus adapters and combinators
//
// Connectors:
//   - connector/natsio: NATS JetStream sources and publishers
//   - connector/ws: WebSocket frame sources and sinks
//
// Text and SQL:
//   - template: interleaved fragment/value templates with interning
//   - template/sqltmpl: template-driven SQL with cached prepared
//     statements
//
// Infrastructure:
//   - config: layered configuration loading and validation
//   - metric: Prometheus metrics registry and HTTP exposition
//   - errors: structured error classification and wrapping
//   - pkg/ring: bounded ring buffer with overflow policies
//   - pkg/worker: panic-safe worker pools
//
// # Usage Patterns
//
// Basic pipeline:
//
//	evens, err := stream.Map(
//	    stream.RangeStream(0, 1_000),
//	    func(v int) int { return v * v },
//	).Filter(func(v int) bool { return v%2 == 0 }).ToSlice()
//
// Parallel reduction:
//
//	sum, err := stream.Sum(stream.FromSlice(values).Parallel())
//
// Streaming from a connector:
//
//	src, _ := natsio.NewSource(cfg.NATS, natsio.WithLogger(logger))
//	src.Connect(ctx)
//	err := src.Stream().
//	    Filter(interesting).
//	    ForEach(func(m natsio.Msg) { handle(m); m.Ack() })
//
// Custom source:
//
//	sp := spliterator.FromSlice(points)
//	s := stream.FromSpliterator(sp, spliterator.Ordered|spliterator.Sized)
//
// # Parallel Evaluation
//
// Calling Parallel on a stream changes evaluation, not meaning. The
// engine splits the source into about parallelism times a configured
// leaf factor pieces, runs the fused stage chain over each piece in
// its own goroutine, and combines per-leaf results in encounter
// order. Operations that depend on order (Limit, Skip, FindFirst,
// ForEachOrdered) keep their sequential semantics under parallelism.
//
// Tuning lives in config.EvaluationConfig and applies per pipeline:
//
//	s := stream.FromSlice(data).
//	    WithEvaluationConfig(cfg.Evaluation).
//	    Parallel()
//
// # Design Principles
//
// Separation of concerns:
//   - Producing elements ≠ transforming elements
//   - Describing a pipeline ≠ running it
//   - Ordering policy ≠ execution mode
//
// Composition over configuration:
//   - Small orthogonal operators
//   - Sources, stages, and terminals combine freely
//   - Connectors are just spliterators with lifecycles
//
// Testability:
//   - Explicit dependencies (no globals)
//   - Deterministic sequential mode for every parallel path
//   - Integration tests with testcontainers
//
// Performance:
//   - Fused stage chains, no intermediate collections
//   - Chunked growable buffers, no slice churn on append
//   - Bounded connector buffers (backpressure)
//
// # Binary
//
// The streambench command exercises the engine end to end:
//
//	# Benchmark the operator core, sequential vs parallel
//	./bin/streambench -elements 5000000 -rounds 5
//
//	# Include a NATS JetStream publish/consume round trip
//	./bin/streambench -nats -elements 100000
//
// # Version
//
// Current: v0.1.0 (generic pipeline core)
//
// The element type is a type parameter throughout. Stages that change
// the element type (Map, FlatMap, Distinct) are package-level
// functions; stages that preserve it are methods, so call chains stay
// fluent where Go's generics allow it.
package streamkit
