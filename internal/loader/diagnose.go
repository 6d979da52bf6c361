package loader

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// SQLSTATE codes that do not follow their class.
const (
	pgCodeUndefinedTable      = "42P01"
	pgCodeUndefinedColumn     = "42703"
	pgCodeInsufficientPrivs   = "42501"
	pgCodeBadCopyFileFormat   = "22P04"
	pgCodeQueryCanceled       = "57014"
	pgCodeLockNotAvailable    = "55P03"
	pgCodeIOError             = "58030"
	pgCodeCharNotInRepertoire = "22021"
)

// COPY reports the failing position in Where, e.g.
// `COPY players, line 3, column match_id: "abc"`.
var copyWherePattern = regexp.MustCompile(`line (\d+)(?:, column ([^:]+))?(?:: "(.*)")?`)

// Diagnose converts a load error into a Diagnostic.
func Diagnose(err error) *pgbulk.Diagnostic {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return diagnosePgError(pgErr)
	}

	d := &pgbulk.Diagnostic{
		Kind:     classify(err),
		Severity: "ERROR",
		Message:  err.Error(),
	}
	return d
}

func classify(err error) pgbulk.ErrorKind {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return pgbulk.ErrorKindFileAccess
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), pgconn.Timeout(err):
		return pgbulk.ErrorKindTimeout
	case errors.Is(err, pgbulk.ErrUnknownTable):
		return pgbulk.ErrorKindSchema
	case errors.Is(err, pgbulk.ErrInvalidConfig):
		return pgbulk.ErrorKindFormat
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || isLostSession(err) {
		return pgbulk.ErrorKindConnection
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pgbulk.ErrorKindFileAccess
	}

	return pgbulk.ErrorKindUnknown
}

// isLostSession reports errors from a session that died mid-batch. pgx does
// not export its "conn closed" error, so the message is matched as well.
func isLostSession(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		pgconn.SafeToRetry(err) ||
		strings.Contains(err.Error(), "conn closed")
}

func diagnosePgError(pgErr *pgconn.PgError) *pgbulk.Diagnostic {
	d := &pgbulk.Diagnostic{
		Kind:     classifyCode(pgErr.Code),
		Code:     pgErr.Code,
		Severity: pgErr.Severity,
		Message:  pgErr.Message,
		Detail:   pgErr.Detail,
		Column:   pgErr.ColumnName,
	}
	if d.Severity == "" {
		d.Severity = "ERROR"
	}

	line, column, value := parseCopyWhere(pgErr.Where)
	d.Line = line
	if d.Column == "" {
		d.Column = column
	}
	if d.Detail == "" && value != "" {
		d.Detail = "value: " + truncate(value, pgbulk.MaxErrorPreviewLength)
	}
	return d
}

func classifyCode(code string) pgbulk.ErrorKind {
	switch code {
	case pgCodeUndefinedTable, pgCodeUndefinedColumn:
		return pgbulk.ErrorKindSchema
	case pgCodeInsufficientPrivs:
		return pgbulk.ErrorKindPermission
	case pgCodeQueryCanceled, pgCodeLockNotAvailable:
		return pgbulk.ErrorKindTimeout
	case pgCodeIOError:
		return pgbulk.ErrorKindFileAccess
	case pgCodeBadCopyFileFormat, pgCodeCharNotInRepertoire:
		return pgbulk.ErrorKindFormat
	}

	switch {
	case strings.HasPrefix(code, "22"):
		return pgbulk.ErrorKindFormat
	case strings.HasPrefix(code, "23"):
		return pgbulk.ErrorKindConstraint
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57"):
		return pgbulk.ErrorKindConnection
	case strings.HasPrefix(code, "42"):
		return pgbulk.ErrorKindSchema
	}
	return pgbulk.ErrorKindUnknown
}

// parseCopyWhere extracts the file line, column and offending value from a
// COPY context line. Line numbers count the header as line 1.
func parseCopyWhere(where string) (line int, column, value string) {
	if where == "" {
		return 0, "", ""
	}
	m := copyWherePattern.FindStringSubmatch(where)
	if m == nil {
		return 0, "", ""
	}
	line, _ = strconv.Atoi(m[1])
	return line, strings.TrimSpace(m[2]), m[3]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
