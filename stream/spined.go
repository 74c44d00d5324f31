package stream

const (
	spinedFirstChunk = 1 << 4
	spinedMaxChunk   = 1 << 24
)

// spinedBuffer accumulates an unknown number of elements without ever
// copying ones already stored. Elements land in a spine of chunks whose
// capacities double up to spinedMaxChunk, so accept is amortized O(1)
// and previously written chunks stay put. A non-positive firstChunk
// means spinedFirstChunk.
type spinedBuffer[T any] struct {
	chunks     [][]T
	size       int64
	firstChunk int
}

func (b *spinedBuffer[T]) accept(v T) {
	n := len(b.chunks)
	if n == 0 || len(b.chunks[n-1]) == cap(b.chunks[n-1]) {
		next := b.firstChunk
		if next <= 0 {
			next = spinedFirstChunk
		}
		if n > 0 {
			next = cap(b.chunks[n-1]) * 2
			if next > spinedMaxChunk {
				next = spinedMaxChunk
			}
		}
		b.chunks = append(b.chunks, make([]T, 0, next))
		n++
	}
	b.chunks[n-1] = append(b.chunks[n-1], v)
	b.size++
}

func (b *spinedBuffer[T]) count() int64 { return b.size }

// get walks the spine to the chunk holding index i. Buffered runs are
// small in practice, so the linear chunk walk is fine.
func (b *spinedBuffer[T]) get(i int64) T {
	for _, c := range b.chunks {
		if i < int64(len(c)) {
			return c[i]
		}
		i -= int64(len(c))
	}
	panic("stream: spined buffer index out of range")
}

// clear resets the buffer for reuse, keeping the first chunk's storage.
func (b *spinedBuffer[T]) clear() {
	if len(b.chunks) > 0 {
		first := b.chunks[0][:0]
		b.chunks = b.chunks[:1]
		b.chunks[0] = first
	}
	b.size = 0
}

func (b *spinedBuffer[T]) asSlice() []T {
	if len(b.chunks) == 1 {
		return b.chunks[0]
	}
	out := make([]T, 0, b.size)
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return out
}

// spinedSink adapts a spinedBuffer to the Sink push protocol.
type spinedSink[T any] struct {
	baseSink
	buf *spinedBuffer[T]
}

func (s *spinedSink[T]) Accept(v T) { s.buf.accept(v) }
