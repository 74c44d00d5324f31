// Package template provides immutable fragment/value templates, the
// building block for parameterized text such as SQL statements.
//
// # Overview
//
// A Template holds N+1 string fragments interleaved with N values:
//
//	t, err := template.Of([]string{"x = ", " and y = ", ""}, 1, 2)
//	if err != nil {
//		return err
//	}
//	s := t.Join() // "x = 1 and y = 2"
//
// Templates are immutable. Transformations such as MapValues and
// Combine return new templates and never modify their receivers, so a
// template may be shared freely across goroutines.
//
// # Shared data and interning
//
// Templates built from the same fragment list share one internal
// record, interned through a bounded LRU cache. Sharing makes
// fragment-shape comparison a pointer check (SharesFragments) and
// gives consumers a per-shape home for derived state.
//
// That home is the metadata cell: a one-shot, owner-claimed slot
// accessed through Meta. The first caller claims the cell and stores
// a computed value; later calls return the stored value for the
// claiming owner and nil for everyone else, so an unlucky consumer
// degrades to uncached work rather than fighting over the slot. The
// sqltmpl subpackage uses the cell to hold prepared-statement caches.
package template
