package preflight

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/marcboeker/go-duckdb/v2"
	"github.com/vvka-141/pgbulk/internal/checksum"
	"github.com/vvka-141/pgbulk/internal/files/filesystem"
	"github.com/vvka-141/pgbulk/internal/loader"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Check is one file to validate. Path must already be resolved.
type Check struct {
	Table     string
	Path      string
	Delimiter string
	KeepNulls bool
}

// FileReport is the outcome of checking one file.
type FileReport struct {
	Table string `json:"table"`
	File  string `json:"file"`

	// Rows is the number of data rows that would be copied.
	Rows int64 `json:"rows"`

	// Bytes and Checksum match what a load of the same file reports.
	Bytes    int64  `json:"bytes"`
	Checksum string `json:"checksum,omitempty"`

	// NullViolations counts NULLs per NOT NULL or key column.
	NullViolations map[string]int64 `json:"null_violations,omitempty"`

	// DuplicateKeys is the number of rows sharing a primary key with an earlier row.
	DuplicateKeys int64 `json:"duplicate_keys,omitempty"`

	Diagnostic *pgbulk.Diagnostic `json:"diagnostic,omitempty"`
}

// OK reports whether the file would load cleanly.
func (r FileReport) OK() bool {
	return r.Diagnostic == nil && len(r.NullViolations) == 0 && r.DuplicateKeys == 0
}

// Validator runs checks on an in-memory DuckDB database.
type Validator struct {
	catalog pgbulk.Catalog
	fs      filesystem.FileSystemProvider
	logger  pgbulk.Logger
}

// New panics on nil dependencies.
func New(catalog pgbulk.Catalog, fs filesystem.FileSystemProvider, logger pgbulk.Logger) *Validator {
	if catalog == nil {
		panic("catalog cannot be nil")
	}
	if fs == nil {
		panic("fs cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Validator{catalog: catalog, fs: fs, logger: logger}
}

// Run checks every file in order. The error covers DuckDB startup only;
// problems with a file are reported in its FileReport.
func (v *Validator) Run(ctx context.Context, checks []Check) ([]FileReport, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}
	defer db.Close()

	reports := make([]FileReport, 0, len(checks))
	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		v.logger.Verbose("Checking %s against %s", c.Path, c.Table)
		reports = append(reports, v.check(ctx, db, c))
	}
	return reports, nil
}

func (v *Validator) check(ctx context.Context, db *sql.DB, c Check) FileReport {
	r := FileReport{Table: c.Table, File: c.Path}

	table, err := v.catalog.Lookup(c.Table)
	if err != nil {
		r.Diagnostic = loader.Diagnose(err)
		return r
	}
	if err := v.fingerprint(c.Path, &r); err != nil {
		r.Diagnostic = loader.Diagnose(fmt.Errorf("open source file: %w", err))
		return r
	}

	delim := c.Delimiter
	if delim == "" {
		delim = pgbulk.DefaultDelimiter
	}
	query, notNull := checkQuery(table, c.Path, delim, c.KeepNulls)
	v.logger.Verbose("%s", query)

	dest := make([]any, 0, len(notNull)+2)
	var rows, distinct int64
	nulls := make([]int64, len(notNull))
	dest = append(dest, &rows)
	for i := range nulls {
		dest = append(dest, &nulls[i])
	}
	if len(table.PrimaryKey) > 0 {
		dest = append(dest, &distinct)
	}

	if err := db.QueryRowContext(ctx, query).Scan(dest...); err != nil {
		r.Diagnostic = diagnose(err)
		return r
	}

	r.Rows = rows
	for i, col := range notNull {
		if nulls[i] > 0 {
			if r.NullViolations == nil {
				r.NullViolations = map[string]int64{}
			}
			r.NullViolations[col] = nulls[i]
		}
	}
	if len(table.PrimaryKey) > 0 {
		r.DuplicateKeys = rows - distinct
	}
	return r
}

func (v *Validator) fingerprint(path string, r *FileReport) error {
	f, err := v.fs.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r.Checksum, r.Bytes, err = checksum.Stream(f)
	return err
}

var lineRe = regexp.MustCompile(`(?i)line:?\s+(\d+)`)

// diagnose converts a DuckDB error into the loader's diagnostic shape.
func diagnose(err error) *pgbulk.Diagnostic {
	d := &pgbulk.Diagnostic{Kind: pgbulk.ErrorKindUnknown, Severity: "ERROR", Message: err.Error()}

	var dErr *duckdb.Error
	if errors.As(err, &dErr) {
		d.Message = dErr.Msg
		switch dErr.Type {
		case duckdb.ErrorTypeConversion, duckdb.ErrorTypeInvalidInput, duckdb.ErrorTypeOutOfRange, duckdb.ErrorTypeParser:
			d.Kind = pgbulk.ErrorKindFormat
		case duckdb.ErrorTypeIO:
			d.Kind = pgbulk.ErrorKindFileAccess
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		d.Kind = pgbulk.ErrorKindTimeout
	}

	if m := lineRe.FindStringSubmatch(d.Message); m != nil {
		d.Line, _ = strconv.Atoi(m[1])
	}
	return d
}
