package pgbulk

import (
	"context"
	"time"
)

// LoadRequest describes a single table load.
type LoadRequest struct {
	// Table is the destination table name, checked against the loader's catalog.
	Table string

	// Path is the resolved path of the source file.
	Path string

	// Delimiter is the field separator; empty means DefaultDelimiter.
	Delimiter string

	// KeepNulls loads empty fields as NULL. When false, empty text fields load
	// as empty strings; empty non-text fields still load as NULL.
	KeepNulls bool

	// Timeout bounds the load; zero means no limit beyond ctx.
	Timeout time.Duration
}

// Loader loads one delimited file into one table. Implementations never
// return an error: every failure is reported in LoadResult.Diagnostic.
type Loader interface {
	Load(ctx context.Context, conn LoadConn, req LoadRequest) LoadResult
}

// LoadObserver receives progress callbacks from a batch run.
// index is zero-based, total is the number of pairs in the batch.
type LoadObserver interface {
	LoadStarted(index, total int, load TableLoad)
	LoadFinished(index, total int, result LoadResult)
}

// Provisioner prepares the target database before loading: reset
// (drop and recreate), ensure it exists and apply table DDL.
type Provisioner interface {
	Prepare(ctx context.Context, config LoadConfig) error
}

// BatchRunner drives a sequence of loads and reports per-table counts.
// The returned error covers setup failures (validation, provisioning,
// connection); per-load failures are only in the report.
type BatchRunner interface {
	Run(ctx context.Context, config LoadConfig) (*BatchReport, error)
}
