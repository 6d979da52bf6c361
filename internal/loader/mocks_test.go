package loader

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockLogger) Verbose(format string, args ...interface{}) { m.add(format) }
func (m *mockLogger) Info(format string, args ...interface{})    { m.add(format) }
func (m *mockLogger) Error(format string, args ...interface{})   { m.add(format) }

func (m *mockLogger) add(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, s)
}

type mockRow struct {
	n   int64
	err error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.n
	return nil
}

// mockConn records the statements a load issues. COPY input is consumed
// fully so checksums cover the whole file.
type mockConn struct {
	beginErr  error
	lockErr   error
	copyErr   error
	commitErr error
	countErr  error

	// copyRows is reported in the COPY command tag; rows adds to count on commit.
	copyRows int64
	count    int64

	// blockCopy makes CopyFrom wait for ctx cancellation.
	blockCopy bool

	begins    int
	execs     []string
	copies    []string
	copied    []byte
	commits   int
	rollbacks int
	queries   []string
}

func (c *mockConn) Begin(ctx context.Context) (pgbulk.LoadTx, error) {
	c.begins++
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return &mockTx{conn: c}, nil
}

func (c *mockConn) QueryRow(ctx context.Context, sql string, args ...any) pgbulk.Row {
	c.queries = append(c.queries, sql)
	return &mockRow{n: c.count, err: c.countErr}
}

type mockTx struct {
	conn    *mockConn
	pending int64
	done    bool
}

func (t *mockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.conn.execs = append(t.conn.execs, sql)
	if t.conn.lockErr != nil {
		return pgconn.CommandTag{}, t.conn.lockErr
	}
	return pgconn.NewCommandTag("LOCK TABLE"), nil
}

func (t *mockTx) CopyFrom(ctx context.Context, r io.Reader, sql string) (pgconn.CommandTag, error) {
	t.conn.copies = append(t.conn.copies, sql)
	if t.conn.blockCopy {
		<-ctx.Done()
		return pgconn.CommandTag{}, ctx.Err()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	t.conn.copied = data
	if t.conn.copyErr != nil {
		return pgconn.CommandTag{}, t.conn.copyErr
	}
	t.pending = t.conn.copyRows
	return pgconn.NewCommandTag("COPY " + strconv.FormatInt(t.conn.copyRows, 10)), nil
}

func (t *mockTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("tx closed")
	}
	t.done = true
	if t.conn.commitErr != nil {
		return t.conn.commitErr
	}
	t.conn.commits++
	t.conn.count += t.pending
	return nil
}

func (t *mockTx) Rollback(ctx context.Context) error {
	if t.done {
		return errors.New("tx closed")
	}
	t.done = true
	t.conn.rollbacks++
	return nil
}
