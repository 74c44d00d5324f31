package stream

import "github.com/c360/streamkit/spliterator"

// pipeFlags tracks structural properties of the element run at a stage
// boundary. Each operation combines them as (upstream &^ clear) | set, so
// a stage only pays for properties that actually survive it.
type pipeFlags uint8

const (
	// flagOrdered means the run has a defined encounter order that
	// stages and terminals must preserve.
	flagOrdered pipeFlags = 1 << iota
	// flagSized means the exact element count is known before traversal.
	flagSized
	// flagDistinct means no two elements of the run are equal.
	flagDistinct
	// flagSorted means elements appear in natural ascending order.
	flagSorted
	// flagShortCircuit means some stage or the terminal may stop
	// traversal before the source is exhausted.
	flagShortCircuit
)

func (f pipeFlags) has(mask pipeFlags) bool { return f&mask == mask }

func (f pipeFlags) combine(set, clear pipeFlags) pipeFlags {
	return (f &^ clear) | set
}

// sourceFlags derives stage flags from source spliterator characteristics.
func sourceFlags(c spliterator.Characteristics) pipeFlags {
	var f pipeFlags
	if c.Has(spliterator.Ordered) {
		f |= flagOrdered
	}
	if c.Has(spliterator.Sized) {
		f |= flagSized
	}
	if c.Has(spliterator.Distinct) {
		f |= flagDistinct
	}
	if c.Has(spliterator.Sorted) {
		f |= flagSorted
	}
	return f
}

// flagCharacteristics maps stage flags back onto spliterator
// characteristics for pipeline-backed spliterators. Sorted is only
// meaningful alongside an encounter order.
func flagCharacteristics(f pipeFlags) spliterator.Characteristics {
	var c spliterator.Characteristics
	if f.has(flagOrdered) {
		c = c.With(spliterator.Ordered)
	}
	if f.has(flagSized) {
		c = c.With(spliterator.Sized)
	}
	if f.has(flagDistinct) {
		c = c.With(spliterator.Distinct)
	}
	if f.has(flagSorted | flagOrdered) {
		c = c.With(spliterator.Sorted)
	}
	return c
}
