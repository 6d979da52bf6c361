package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgbulk/internal/loader"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

type mockConnector struct {
	pool *pgxpool.Pool
	err  error
}

func (m *mockConnector) Connect(_ context.Context) (*pgxpool.Pool, error) {
	return m.pool, m.err
}

type mockApprover struct {
	approved bool
	err      error
	calls    int
}

func (m *mockApprover) RequestApproval(_ context.Context, _ string) (bool, error) {
	m.calls++
	return m.approved, m.err
}

type mockDatabaseManager struct {
	existsResult bool
	existsErr    error
	createErr    error
	dropErr      error
	terminateErr error

	calls []string
}

func (m *mockDatabaseManager) Exists(_ context.Context, _ pgbulk.DBConnection, dbName string) (bool, error) {
	m.calls = append(m.calls, "exists:"+dbName)
	return m.existsResult, m.existsErr
}

func (m *mockDatabaseManager) Create(_ context.Context, _ pgbulk.DBConnection, dbName string) error {
	m.calls = append(m.calls, "create:"+dbName)
	return m.createErr
}

func (m *mockDatabaseManager) Drop(_ context.Context, _ pgbulk.DBConnection, dbName string) error {
	m.calls = append(m.calls, "drop:"+dbName)
	return m.dropErr
}

func (m *mockDatabaseManager) TerminateConnections(_ context.Context, _ pgbulk.DBConnection, dbName string) error {
	m.calls = append(m.calls, "terminate:"+dbName)
	return m.terminateErr
}

// mockDBConnection records every statement it is asked to execute.
type mockDBConnection struct {
	execErr error
	execs   []string
}

func (m *mockDBConnection) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	m.execs = append(m.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), m.execErr
}

func (m *mockDBConnection) QueryRow(_ context.Context, _ string, _ ...any) pgbulk.Row {
	return mockRow{err: fmt.Errorf("not implemented")}
}

func (m *mockDBConnection) Acquire(_ context.Context) (pgbulk.PooledConnection, error) {
	return nil, fmt.Errorf("not implemented")
}

type mockRow struct {
	value int64
	err   error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.value
	return nil
}

// mockLoadConn answers count(*) queries from a per-statement table.
type mockLoadConn struct {
	counts    map[string]int64
	countErrs map[string]error
	queries   []string
}

func (m *mockLoadConn) Begin(_ context.Context) (pgbulk.LoadTx, error) {
	return nil, fmt.Errorf("mockLoadConn does not open transactions")
}

func (m *mockLoadConn) QueryRow(_ context.Context, sql string, _ ...any) pgbulk.Row {
	m.queries = append(m.queries, sql)
	for table, err := range m.countErrs {
		if sql == loader.CountStatement(table) {
			return mockRow{err: err}
		}
	}
	for table, n := range m.counts {
		if sql == loader.CountStatement(table) {
			return mockRow{value: n}
		}
	}
	return mockRow{}
}

// mockLoader returns canned results per table and records requests.
type mockLoader struct {
	results  map[string]pgbulk.LoadResult
	requests []pgbulk.LoadRequest
	onLoad   func(req pgbulk.LoadRequest)
}

func (m *mockLoader) Load(_ context.Context, _ pgbulk.LoadConn, req pgbulk.LoadRequest) pgbulk.LoadResult {
	m.requests = append(m.requests, req)
	if m.onLoad != nil {
		m.onLoad(req)
	}
	res, ok := m.results[req.Table]
	if !ok {
		res = pgbulk.LoadResult{Status: pgbulk.LoadStatusLoaded}
	}
	res.Table = req.Table
	res.File = req.Path
	return res
}

type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	finished []string
}

func (o *recordingObserver) LoadStarted(_, _ int, load pgbulk.TableLoad) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, load.Table)
}

func (o *recordingObserver) LoadFinished(_, _ int, result pgbulk.LoadResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, string(result.Status)+":"+result.Table)
}

type mockLogger struct {
	mu    sync.Mutex
	infos []string
	errs  []string
}

func (m *mockLogger) Verbose(_ string, _ ...interface{}) {}

func (m *mockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, fmt.Sprintf(format, args...))
}

func (m *mockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, fmt.Sprintf(format, args...))
}
