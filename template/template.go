package template

import (
	"fmt"
	"slices"
	"strings"

	"github.com/c360/streamkit/errors"
)

// Template is an immutable sequence of string fragments interleaved
// with values. A template with N values always carries N+1 fragments,
// so rendering alternates fragment, value, fragment.
type Template struct {
	shared *sharedData
	values []any
}

// New builds a template from a fragment list and a value list. The
// fragment count must be the value count plus one.
func New(fragments []string, values []any) (*Template, error) {
	if len(fragments) != len(values)+1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "template", "New",
			fmt.Sprintf("fragment count %d with %d values", len(fragments), len(values)))
	}
	return &Template{
		shared: intern(fragments),
		values: slices.Clone(values),
	}, nil
}

// Of builds a template from a fragment list and variadic values.
func Of(fragments []string, values ...any) (*Template, error) {
	return New(fragments, values)
}

// Lit returns a template holding a single literal fragment and no
// values.
func Lit(s string) *Template {
	return &Template{shared: intern([]string{s})}
}

// Fragments returns a copy of the fragment list.
func (t *Template) Fragments() []string {
	return slices.Clone(t.shared.fragments)
}

// Values returns a copy of the value list.
func (t *Template) Values() []any {
	return slices.Clone(t.values)
}

// Join renders the template by interleaving fragments with values
// formatted via fmt.Sprint.
func (t *Template) Join() string {
	var b strings.Builder
	b.WriteString(t.shared.fragments[0])
	for i, v := range t.values {
		b.WriteString(fmt.Sprint(v))
		b.WriteString(t.shared.fragments[i+1])
	}
	return b.String()
}

// String renders the template the same way Join does.
func (t *Template) String() string {
	return t.Join()
}

// Interpolate renders the template using a caller-supplied formatter
// for each value. The formatter receives the value's index and the
// value itself.
func (t *Template) Interpolate(render func(idx int, value any) string) string {
	var b strings.Builder
	b.WriteString(t.shared.fragments[0])
	for i, v := range t.values {
		b.WriteString(render(i, v))
		b.WriteString(t.shared.fragments[i+1])
	}
	return b.String()
}

// MapValues returns a template with the same fragments and each value
// replaced by fn(value). The result shares the receiver's fragment
// record, so SharesFragments reports true between the two.
func (t *Template) MapValues(fn func(any) any) *Template {
	mapped := make([]any, len(t.values))
	for i, v := range t.values {
		mapped[i] = fn(v)
	}
	return &Template{shared: t.shared, values: mapped}
}

// SharesFragments reports whether both templates were built from the
// same interned fragment list. Sharing is what makes per-shape caches
// such as prepared statements reusable across templates.
func (t *Template) SharesFragments(o *Template) bool {
	return o != nil && t.shared == o.shared
}

// Meta accesses the template's one-shot metadata cell, shared by
// every template with the same interned fragments. The first caller
// claims the cell for its owner key and stores compute's result.
// Later calls return the stored value when owner matches the claimant
// and nil otherwise. Owner keys must be comparable; a pointer to a
// package-level variable is typical.
func (t *Template) Meta(owner any, compute func() any) any {
	return t.shared.meta.get(owner, compute)
}

// Combine flattens templates into one. Fragments are spliced at the
// seams, joining the last fragment of each template with the first
// fragment of the next, and values are concatenated in order. With no
// arguments it returns an empty literal; with one it returns that
// template unchanged.
func Combine(ts ...*Template) (*Template, error) {
	for i, t := range ts {
		if t == nil {
			return nil, errors.WrapInvalid(errors.ErrInvalidData, "template", "Combine",
				fmt.Sprintf("nil template at index %d", i))
		}
	}
	switch len(ts) {
	case 0:
		return Lit(""), nil
	case 1:
		return ts[0], nil
	}

	nfrags, nvals := 1, 0
	for _, t := range ts {
		nfrags += len(t.shared.fragments) - 1
		nvals += len(t.values)
	}
	fragments := make([]string, 0, nfrags)
	values := make([]any, 0, nvals)
	for i, t := range ts {
		tf := t.shared.fragments
		if i == 0 {
			fragments = append(fragments, tf...)
		} else {
			fragments[len(fragments)-1] += tf[0]
			fragments = append(fragments, tf[1:]...)
		}
		values = append(values, t.values...)
	}
	return New(fragments, values)
}
