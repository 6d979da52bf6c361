package pgbulk

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBConnection abstracts the connection operations needed by DatabaseManager
// and the provisioner, decoupling them from pgx pool types.
type DBConnection interface {
	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// QueryRow executes a query that is expected to return at most one row.
	// Errors are deferred until Row's Scan method is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Acquire obtains a dedicated connection for statements that cannot run
	// in a transaction (CREATE DATABASE, DROP DATABASE).
	// Caller must call Release() on the returned PooledConnection when done.
	Acquire(ctx context.Context) (PooledConnection, error)
}

// Row represents a single row returned by QueryRow.
type Row interface {
	Scan(dest ...any) error
}

// PooledConnection represents a connection acquired from a pool.
// The caller must call Release() when done to return it to the pool.
type PooledConnection interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Release()
}

// LoadConn is the connection surface a Loader needs: a transaction to copy
// into and a query to count rows afterwards.
type LoadConn interface {
	Begin(ctx context.Context) (LoadTx, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// LoadTx is a transaction that can stream COPY FROM STDIN data.
type LoadTx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// CopyFrom executes a COPY ... FROM STDIN statement, streaming r as its input.
	CopyFrom(ctx context.Context, r io.Reader, sql string) (pgconn.CommandTag, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
