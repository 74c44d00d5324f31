package sqltmpl

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sync"
	"testing"
)

// recorder collects driver activity so tests can assert on prepares,
// executions, and statement closes.
type recorder struct {
	mu       sync.Mutex
	prepared []string
	execs    []recordedExec
	closed   int
}

type recordedExec struct {
	query string
	args  []driver.NamedValue
}

func (r *recorder) recordPrepare(q string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prepared = append(r.prepared, q)
}

func (r *recorder) recordExec(q string, args []driver.NamedValue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.execs = append(r.execs, recordedExec{query: q, args: args})
}

func (r *recorder) recordClose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
}

func (r *recorder) counts() (prepared, execs, closed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prepared), len(r.execs), r.closed
}

func (r *recorder) execAt(i int) recordedExec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.execs[i]
}

type fakeConnector struct{ rec *recorder }

func (c *fakeConnector) Connect(context.Context) (driver.Conn, error) {
	return &fakeConn{rec: c.rec}, nil
}

func (c *fakeConnector) Driver() driver.Driver { return &fakeDriver{rec: c.rec} }

type fakeDriver struct{ rec *recorder }

func (d *fakeDriver) Open(string) (driver.Conn, error) {
	return &fakeConn{rec: d.rec}, nil
}

type fakeConn struct{ rec *recorder }

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	c.rec.recordPrepare(query)
	return &fakeStmt{rec: c.rec, query: query}, nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, fmt.Errorf("transactions not supported")
}

type fakeStmt struct {
	rec   *recorder
	query string
}

func (s *fakeStmt) Close() error {
	s.rec.recordClose()
	return nil
}

func (s *fakeStmt) NumInput() int { return -1 }

func (s *fakeStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.rec.recordExec(s.query, toNamed(args))
	return driver.RowsAffected(1), nil
}

func (s *fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.rec.recordExec(s.query, toNamed(args))
	return &fakeRows{}, nil
}

func (s *fakeStmt) ExecContext(_ context.Context, args []driver.NamedValue) (driver.Result, error) {
	s.rec.recordExec(s.query, args)
	return driver.RowsAffected(1), nil
}

func (s *fakeStmt) QueryContext(_ context.Context, args []driver.NamedValue) (driver.Rows, error) {
	s.rec.recordExec(s.query, args)
	return &fakeRows{}, nil
}

// CheckNamedValue accepts named arguments and applies the default
// conversions where they apply, keeping unconvertible values as-is.
func (s *fakeStmt) CheckNamedValue(nv *driver.NamedValue) error {
	v, err := driver.DefaultParameterConverter.ConvertValue(nv.Value)
	if err != nil {
		return nil
	}
	nv.Value = v
	return nil
}

func toNamed(args []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(args))
	for i, a := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: a}
	}
	return named
}

type fakeRows struct{}

func (r *fakeRows) Columns() []string { return []string{"ok"} }

func (r *fakeRows) Close() error { return nil }

func (r *fakeRows) Next([]driver.Value) error { return io.EOF }

// newFakeDB returns a database backed by the fake driver, capped at
// one connection so prepare counts stay deterministic.
func newFakeDB(t *testing.T) (*sql.DB, *recorder) {
	t.Helper()
	rec := &recorder{}
	db := sql.OpenDB(&fakeConnector{rec: rec})
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db, rec
}
