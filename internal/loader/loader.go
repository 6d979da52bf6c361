package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/pgbulk/internal/checksum"
	"github.com/vvka-141/pgbulk/internal/files/filesystem"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// rollbackTimeout bounds the rollback issued after a failed or cancelled load.
const rollbackTimeout = 5 * time.Second

// CopyLoader implements pgbulk.Loader with PostgreSQL COPY.
type CopyLoader struct {
	catalog pgbulk.Catalog
	fs      filesystem.FileSystemProvider
	logger  pgbulk.Logger
}

var _ pgbulk.Loader = (*CopyLoader)(nil)

// New creates a CopyLoader. Panics if any dependency is nil.
func New(catalog pgbulk.Catalog, fs filesystem.FileSystemProvider, logger pgbulk.Logger) *CopyLoader {
	if catalog == nil {
		panic("catalog cannot be nil")
	}
	if fs == nil {
		panic("fs cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &CopyLoader{catalog: catalog, fs: fs, logger: logger}
}

// Load streams req.Path into req.Table. The file is committed whole or not
// at all; the returned result carries the row count or the diagnostic.
func (l *CopyLoader) Load(ctx context.Context, conn pgbulk.LoadConn, req pgbulk.LoadRequest) (result pgbulk.LoadResult) {
	result = pgbulk.LoadResult{
		Table:     req.Table,
		File:      req.Path,
		StartedAt: time.Now(),
	}
	defer func() {
		result.Duration = time.Since(result.StartedAt)
	}()

	fail := func(err error) pgbulk.LoadResult {
		result.Status = pgbulk.LoadStatusFailed
		result.Diagnostic = Diagnose(err)
		return result
	}

	table, err := l.catalog.Lookup(req.Table)
	if err != nil {
		return fail(err)
	}

	stmt, err := BuildCopyStatement(table, CopyOptions{Delimiter: req.Delimiter, KeepNulls: req.KeepNulls})
	if err != nil {
		return fail(err)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	f, err := l.fs.OpenFile(req.Path)
	if err != nil {
		return fail(fmt.Errorf("open source file: %w", err))
	}
	defer f.Close()

	src := checksum.NewReader(f)
	copied, err := l.copyInTx(ctx, conn, table.Name, stmt, src)
	result.Bytes = src.Bytes()
	result.Checksum = src.Sum()
	if err != nil {
		return fail(err)
	}

	result.Status = pgbulk.LoadStatusLoaded
	result.RowsCopied = copied

	count, err := CountRows(ctx, conn, table.Name)
	if err != nil {
		// The data is committed; report what COPY saw and keep the count error.
		result.RowCount = copied
		result.Diagnostic = Diagnose(fmt.Errorf("count rows after load: %w", err))
		result.Diagnostic.Severity = "WARNING"
		return result
	}
	result.RowCount = count
	return result
}

func (l *CopyLoader) copyInTx(ctx context.Context, conn pgbulk.LoadConn, table, stmt string, src *checksum.Reader) (int64, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin load transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		defer cancel()
		if rbErr := tx.Rollback(rbCtx); rbErr != nil {
			l.logger.Verbose("Rollback of %s load failed: %v", table, rbErr)
		}
	}()

	if _, err := tx.Exec(ctx, LockStatement(table)); err != nil {
		return 0, err
	}

	l.logger.Verbose("%s", stmt)
	tag, err := tx.CopyFrom(ctx, src, stmt)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	committed = true

	return tag.RowsAffected(), nil
}

// Querier runs single-row queries. Both pgbulk.LoadConn and
// pgbulk.DBConnection satisfy it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgbulk.Row
}

// CountRows returns the number of rows in a catalog table.
func CountRows(ctx context.Context, conn Querier, table string) (int64, error) {
	var n int64
	if err := conn.QueryRow(ctx, CountStatement(table)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
