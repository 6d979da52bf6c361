package db

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// PinnedLoadConn runs every load of a batch in one session. A cancelled
// COPY or LOCK closes the session, so the next call acquires a fresh one
// from the pool instead of failing with "conn closed".
// Not safe for concurrent use.
type PinnedLoadConn struct {
	pool *pgxpool.Pool
	conn *pgxpool.Conn
}

// AcquirePinnedLoadConn pins a session from pool. Release returns it.
func AcquirePinnedLoadConn(ctx context.Context, pool *pgxpool.Pool) (*PinnedLoadConn, error) {
	p := &PinnedLoadConn{pool: pool}
	if _, err := p.live(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// live returns the pinned session, replacing it first if it was closed.
func (p *PinnedLoadConn) live(ctx context.Context) (*pgxpool.Conn, error) {
	if p.conn != nil && !p.conn.Conn().IsClosed() {
		return p.conn, nil
	}
	if p.conn != nil {
		p.conn.Release()
		p.conn = nil
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection: %w", pgbulk.ErrConnectionFailed, err)
	}
	p.conn = conn
	return conn, nil
}

// Session returns the session currently pinned, nil after Release.
func (p *PinnedLoadConn) Session() *pgxpool.Conn {
	return p.conn
}

func (p *PinnedLoadConn) Begin(ctx context.Context) (pgbulk.LoadTx, error) {
	conn, err := p.live(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &loadTxAdapter{tx: tx}, nil
}

func (p *PinnedLoadConn) QueryRow(ctx context.Context, sql string, args ...any) pgbulk.Row {
	conn, err := p.live(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return conn.QueryRow(ctx, sql, args...)
}

// Release returns the pinned session to the pool.
func (p *PinnedLoadConn) Release() {
	if p.conn != nil {
		p.conn.Release()
		p.conn = nil
	}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

type loadTxAdapter struct {
	tx pgx.Tx
}

func (t *loadTxAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.tx.Exec(ctx, sql, args...)
}

// CopyFrom streams r through the transaction's underlying connection. pgx.Tx
// only offers row-based CopyFrom, so the raw protocol path is used for CSV text.
func (t *loadTxAdapter) CopyFrom(ctx context.Context, r io.Reader, sql string) (pgconn.CommandTag, error) {
	return t.tx.Conn().PgConn().CopyFrom(ctx, r, sql)
}

func (t *loadTxAdapter) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *loadTxAdapter) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

var _ pgbulk.LoadConn = (*PinnedLoadConn)(nil)
