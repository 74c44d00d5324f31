// Package sqltmpl binds templates to database/sql: fragments become
// the query text with dialect-specific placeholders, values become
// the driver arguments. Prepared statements are cached per fragment
// shape inside the template's metadata cell, so repeated executions
// of templates built at one call site reuse one statement per
// database handle.
package sqltmpl

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"github.com/c360/streamkit/errors"
	"github.com/c360/streamkit/template"
)

// Dialect selects the placeholder style spliced between fragments.
type Dialect int

const (
	// Question uses "?" placeholders.
	Question Dialect = iota
	// Dollar uses "$1".."$n" placeholders.
	Dollar
	// Named uses ":p1"..":pn" placeholders. Values already wrapped in
	// sql.NamedArg keep their declared name in the query.
	Named
)

func (d Dialect) String() string {
	switch d {
	case Question:
		return "question"
	case Dollar:
		return "dollar"
	case Named:
		return "named"
	default:
		return "unknown"
	}
}

// Param attaches binding hints to a value. A positive Precision
// renders floating point values with that many decimal places before
// binding; other values pass through unchanged.
type Param struct {
	Value     any
	Precision int
}

// Query renders the template's query text with Question placeholders.
func Query(t *template.Template) string {
	return Question.Query(t)
}

// Query renders the template's fragments joined with the dialect's
// placeholders, one per value.
func (d Dialect) Query(t *template.Template) string {
	frags := t.Fragments()
	values := t.Values()
	var b strings.Builder
	b.WriteString(frags[0])
	for i := 1; i < len(frags); i++ {
		b.WriteString(d.placeholderFor(i-1, values))
		b.WriteString(frags[i])
	}
	return b.String()
}

func (d Dialect) placeholderFor(idx int, values []any) string {
	switch d {
	case Dollar:
		return "$" + strconv.Itoa(idx+1)
	case Named:
		if idx < len(values) {
			if na, ok := values[idx].(sql.NamedArg); ok && na.Name != "" {
				return ":" + na.Name
			}
		}
		return ":p" + strconv.Itoa(idx+1)
	default:
		return "?"
	}
}

// Args converts the template's values into driver arguments using
// Question binding rules.
func Args(t *template.Template) ([]any, error) {
	return Question.Args(t)
}

// Args converts the template's values into driver arguments. Param
// wrappers are unwrapped, sql.NamedArg and driver.Valuer values pass
// through, and nested templates are rejected. The Named dialect wraps
// plain values in sql.NamedArg so they pair with their placeholders.
func (d Dialect) Args(t *template.Template) ([]any, error) {
	values := t.Values()
	args := make([]any, 0, len(values))
	for i, v := range values {
		arg, err := bindValue(i, v)
		if err != nil {
			return nil, err
		}
		if d == Named {
			if _, ok := arg.(sql.NamedArg); !ok {
				arg = sql.Named("p"+strconv.Itoa(i+1), arg)
			}
		}
		args = append(args, arg)
	}
	return args, nil
}

func bindValue(idx int, v any) (any, error) {
	switch x := v.(type) {
	case *template.Template, template.Template:
		return nil, nestedTemplateErr(idx)
	case Param:
		inner := renderPrecision(x)
		if isTemplate(inner) {
			return nil, nestedTemplateErr(idx)
		}
		return inner, nil
	case sql.NamedArg:
		if isTemplate(x.Value) {
			return nil, nestedTemplateErr(idx)
		}
		return x, nil
	case driver.Valuer:
		return x, nil
	default:
		return v, nil
	}
}

func renderPrecision(p Param) any {
	if p.Precision <= 0 {
		return p.Value
	}
	switch f := p.Value.(type) {
	case float64:
		return strconv.FormatFloat(f, 'f', p.Precision, 64)
	case float32:
		return strconv.FormatFloat(float64(f), 'f', p.Precision, 32)
	default:
		return p.Value
	}
}

func isTemplate(v any) bool {
	switch v.(type) {
	case *template.Template, template.Template:
		return true
	default:
		return false
	}
}

func nestedTemplateErr(idx int) error {
	return errors.WrapInvalid(errors.ErrInvalidData, "sqltmpl", "Args",
		fmt.Sprintf("nested template at value %d", idx))
}
