package stream

// Sink accepts a run of elements framed by Begin and End. Accept may only
// be called between Begin and End. Cancelled reports that the sink wants
// no further elements; drivers poll it before each push and stop early
// when it returns true.
type Sink[T any] interface {
	// Begin signals the start of a run. size is the exact number of
	// elements that will follow, or -1 when unknown.
	Begin(size int64)

	// Accept pushes one element into the sink.
	Accept(v T)

	// End signals that the run is complete.
	End()

	// Cancelled reports whether the sink wants traversal to stop.
	Cancelled() bool
}

// chainedSink forwards lifecycle signals to the downstream sink. Operation
// sinks embed it and provide Accept plus whichever signals they intercept.
type chainedSink[D any] struct {
	down Sink[D]
}

func (c *chainedSink[D]) Begin(size int64) { c.down.Begin(size) }
func (c *chainedSink[D]) End()             { c.down.End() }
func (c *chainedSink[D]) Cancelled() bool  { return c.down.Cancelled() }

// baseSink is a leaf sink with no-op lifecycle signals that never cancels.
// Terminal sinks embed it and provide Accept.
type baseSink struct{}

func (baseSink) Begin(int64)     {}
func (baseSink) End()            {}
func (baseSink) Cancelled() bool { return false }

// consumerSink adapts a plain function to a Sink.
type consumerSink[T any] struct {
	baseSink
	fn func(T)
}

func (s *consumerSink[T]) Accept(v T) { s.fn(v) }

// relaySink forwards elements and cancellation to an already-begun
// downstream sink while absorbing the Begin and End of an inner run.
type relaySink[T any] struct {
	down Sink[T]
}

func (s *relaySink[T]) Begin(int64)     {}
func (s *relaySink[T]) Accept(v T)      { s.down.Accept(v) }
func (s *relaySink[T]) End()            {}
func (s *relaySink[T]) Cancelled() bool { return s.down.Cancelled() }

// countingSink counts elements.
type countingSink[T any] struct {
	baseSink
	n int64
}

func (s *countingSink[T]) Accept(T) { s.n++ }
