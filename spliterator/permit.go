package spliterator

import (
	"runtime"
	"sync/atomic"
)

// permitChunk bounds how many elements one bulk-traversal round buffers
// before asking the shared pool how many of them may be emitted.
const permitChunk = 1 << 7

type permitStatus int

const (
	permitNoMore permitStatus = iota
	permitMaybeMore
	permitUnlimited
)

// UnorderedWindow returns a spliterator producing up to limit elements
// of s after discarding skip elements, without preserving which
// elements are discarded or their order. A negative limit means
// unbounded. All splits share one atomic permit pool, so the family as
// a whole honors the skip and limit totals while siblings race for
// permits; this is the non-order-preserving decomposition for
// limit/skip under parallel evaluation.
func UnorderedWindow[T any](s Spliterator[T], skip, limit int64) Spliterator[T] {
	if skip < 0 {
		panic("spliterator: negative skip")
	}
	p := &permitSpliterator[T]{
		s:         s,
		unlimited: limit < 0,
		permits:   &atomic.Int64{},
	}
	if limit >= 0 {
		p.skipThreshold = limit
		p.chunkSize = permitChunk
		if scaled := (skip+limit)/leafTarget() + 1; scaled < p.chunkSize {
			p.chunkSize = scaled
		}
		p.permits.Store(skip + limit)
	} else {
		p.chunkSize = permitChunk
		p.permits.Store(skip)
	}
	return p
}

// leafTarget mirrors the parallel evaluator's target leaf count so
// chunk sizes stay proportional to the expected decomposition.
func leafTarget() int64 {
	return int64(runtime.GOMAXPROCS(0)) << 2
}

type permitSpliterator[T any] struct {
	s             Spliterator[T]
	unlimited     bool
	skipThreshold int64
	chunkSize     int64
	permits       *atomic.Int64 // shared across every split of this family
}

// acquire takes up to n permits from the shared pool and returns how
// many of those n elements may be emitted. While the pool still holds
// more than skipThreshold permits the acquired elements fall in the
// skip region and are not emittable.
func (p *permitSpliterator[T]) acquire(n int64) int64 {
	var remaining, grabbing int64
	for {
		remaining = p.permits.Load()
		if remaining == 0 {
			if p.unlimited {
				return n
			}
			return 0
		}
		grabbing = remaining
		if n < grabbing {
			grabbing = n
		}
		if grabbing <= 0 || p.permits.CompareAndSwap(remaining, remaining-grabbing) {
			break
		}
	}
	if p.unlimited {
		if n > grabbing {
			return n - grabbing
		}
		return 0
	}
	if remaining > p.skipThreshold {
		emit := grabbing - (remaining - p.skipThreshold)
		if emit < 0 {
			return 0
		}
		return emit
	}
	return grabbing
}

func (p *permitSpliterator[T]) status() permitStatus {
	if p.permits.Load() > 0 {
		return permitMaybeMore
	}
	if p.unlimited {
		return permitUnlimited
	}
	return permitNoMore
}

func (p *permitSpliterator[T]) TrySplit() Spliterator[T] {
	if p.permits.Load() == 0 {
		return nil
	}
	split := p.s.TrySplit()
	if split == nil {
		return nil
	}
	return &permitSpliterator[T]{
		s:             split,
		unlimited:     p.unlimited,
		skipThreshold: p.skipThreshold,
		chunkSize:     p.chunkSize,
		permits:       p.permits,
	}
}

func (p *permitSpliterator[T]) TryAdvance(action func(T)) bool {
	var slot T
	for p.status() != permitNoMore {
		if !p.s.TryAdvance(func(v T) { slot = v }) {
			return false
		}
		if p.acquire(1) == 1 {
			action(slot)
			return true
		}
	}
	return false
}

func (p *permitSpliterator[T]) ForEachRemaining(action func(T)) {
	var buf []T
	for {
		switch p.status() {
		case permitNoMore:
			return
		case permitUnlimited:
			p.s.ForEachRemaining(action)
			return
		}
		// Optimistically buffer up to a chunk, then emit however many of
		// them the pool grants.
		if buf == nil {
			buf = make([]T, 0, p.chunkSize)
		} else {
			buf = buf[:0]
		}
		var requested int64
		for requested < p.chunkSize && p.s.TryAdvance(func(v T) { buf = append(buf, v) }) {
			requested++
		}
		if requested == 0 {
			return
		}
		emit := p.acquire(requested)
		for i := int64(0); i < emit; i++ {
			action(buf[i])
		}
	}
}

func (p *permitSpliterator[T]) EstimateSize() int64 {
	return p.s.EstimateSize()
}

func (p *permitSpliterator[T]) Characteristics() Characteristics {
	return p.s.Characteristics().Without(Sized | Subsized | Ordered)
}
