package template

import "github.com/c360/streamkit/stream"

// Stream returns a sequential stream over the given templates.
// Templates are plain values to the pipeline; any stage may render,
// transform, or route them.
func Stream(ts []*Template) *stream.Stream[*Template] {
	return stream.FromSlice(ts)
}
