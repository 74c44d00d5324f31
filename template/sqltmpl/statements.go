package sqltmpl

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/c360/streamkit/errors"
	"github.com/c360/streamkit/template"
)

// stmtCacheKey claims template metadata cells for this package.
type stmtCacheKey struct{}

// stmtCache holds the prepared statements for one fragment shape,
// keyed by database handle and dialect.
type stmtCache struct {
	mu    sync.Mutex
	stmts map[stmtKey]*sql.Stmt
}

type stmtKey struct {
	db      *sql.DB
	dialect Dialect
}

// cacheFor returns the shape's statement cache, or nil when another
// consumer already claimed the template's metadata cell.
func cacheFor(t *template.Template) *stmtCache {
	v := t.Meta(stmtCacheKey{}, func() any {
		return &stmtCache{stmts: make(map[stmtKey]*sql.Stmt)}
	})
	sc, _ := v.(*stmtCache)
	return sc
}

// Prepare returns a statement for the template's query against db,
// using Question placeholders.
func Prepare(ctx context.Context, db *sql.DB, t *template.Template) (*sql.Stmt, error) {
	return Question.Prepare(ctx, db, t)
}

// Prepare returns a statement for the template's query against db.
// Statements are cached in the template's metadata cell per database
// handle and dialect; cached statements are shared, so close them
// through CloseStatements rather than individually. When the cell is
// claimed by another consumer the statement is freshly prepared and
// owned by the caller.
func (d Dialect) Prepare(ctx context.Context, db *sql.DB, t *template.Template) (*sql.Stmt, error) {
	stmt, _, err := d.prepare(ctx, db, t)
	return stmt, err
}

// prepare reports whether the returned statement came from the shape
// cache. Uncached statements are the caller's to close.
func (d Dialect) prepare(ctx context.Context, db *sql.DB, t *template.Template) (*sql.Stmt, bool, error) {
	sc := cacheFor(t)
	if sc == nil {
		stmt, err := db.PrepareContext(ctx, d.Query(t))
		if err != nil {
			return nil, false, errors.WrapTransient(err, "sqltmpl", "Prepare", "prepare statement")
		}
		return stmt, false, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	key := stmtKey{db: db, dialect: d}
	if stmt, ok := sc.stmts[key]; ok {
		return stmt, true, nil
	}
	stmt, err := db.PrepareContext(ctx, d.Query(t))
	if err != nil {
		return nil, false, errors.WrapTransient(err, "sqltmpl", "Prepare", "prepare statement")
	}
	sc.stmts[key] = stmt
	return stmt, true, nil
}

// CloseStatements closes every statement cached for the template's
// fragment shape, across all database handles and dialects. It is a
// no-op when nothing was cached.
func CloseStatements(t *template.Template) error {
	sc := cacheFor(t)
	if sc == nil {
		return nil
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	var firstErr error
	for _, stmt := range sc.stmts {
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = errors.WrapTransient(err, "sqltmpl", "CloseStatements", "close statement")
		}
	}
	clear(sc.stmts)
	return firstErr
}

// QueryContext executes the template as a query with Question
// placeholders, using the statement cache.
func QueryContext(ctx context.Context, db *sql.DB, t *template.Template) (*sql.Rows, error) {
	return Question.QueryContext(ctx, db, t)
}

// QueryContext executes the template as a query using the statement
// cache.
func (d Dialect) QueryContext(ctx context.Context, db *sql.DB, t *template.Template) (*sql.Rows, error) {
	args, err := d.Args(t)
	if err != nil {
		return nil, err
	}
	stmt, cached, err := d.prepare(ctx, db, t)
	if err != nil {
		return nil, err
	}
	rows, qerr := stmt.QueryContext(ctx, args...)
	if !cached {
		// database/sql keeps the underlying statement alive until the
		// returned rows are closed.
		_ = stmt.Close()
	}
	if qerr != nil {
		return nil, errors.WrapTransient(qerr, "sqltmpl", "QueryContext", "execute query")
	}
	return rows, nil
}

// ExecContext executes the template as a statement with Question
// placeholders, using the statement cache.
func ExecContext(ctx context.Context, db *sql.DB, t *template.Template) (sql.Result, error) {
	return Question.ExecContext(ctx, db, t)
}

// ExecContext executes the template as a statement using the
// statement cache.
func (d Dialect) ExecContext(ctx context.Context, db *sql.DB, t *template.Template) (sql.Result, error) {
	args, err := d.Args(t)
	if err != nil {
		return nil, err
	}
	stmt, cached, err := d.prepare(ctx, db, t)
	if err != nil {
		return nil, err
	}
	res, xerr := stmt.ExecContext(ctx, args...)
	if !cached {
		_ = stmt.Close()
	}
	if xerr != nil {
		return nil, errors.WrapTransient(xerr, "sqltmpl", "ExecContext", "execute statement")
	}
	return res, nil
}

// Batch executes templates in order with Question placeholders.
func Batch(ctx context.Context, db *sql.DB, ts []*template.Template) ([]sql.Result, error) {
	return Question.Batch(ctx, db, ts)
}

// Batch executes templates in order, reusing a single prepared
// statement when every template shares the first one's fragments.
// Mixed shapes fall back to per-template execution. On failure the
// results of the statements executed before it are returned with the
// error.
func (d Dialect) Batch(ctx context.Context, db *sql.DB, ts []*template.Template) ([]sql.Result, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	for i, t := range ts {
		if t == nil {
			return nil, errors.WrapInvalid(errors.ErrInvalidData, "sqltmpl", "Batch",
				fmt.Sprintf("nil template at index %d", i))
		}
	}

	shared := true
	for _, t := range ts[1:] {
		if !ts[0].SharesFragments(t) {
			shared = false
			break
		}
	}

	results := make([]sql.Result, 0, len(ts))
	if !shared {
		for _, t := range ts {
			res, err := d.ExecContext(ctx, db, t)
			if err != nil {
				return results, err
			}
			results = append(results, res)
		}
		return results, nil
	}

	stmt, cached, err := d.prepare(ctx, db, ts[0])
	if err != nil {
		return nil, err
	}
	if !cached {
		defer stmt.Close()
	}
	for _, t := range ts {
		args, err := d.Args(t)
		if err != nil {
			return results, err
		}
		res, xerr := stmt.ExecContext(ctx, args...)
		if xerr != nil {
			return results, errors.WrapTransient(xerr, "sqltmpl", "Batch", "execute statement")
		}
		results = append(results, res)
	}
	return results, nil
}
