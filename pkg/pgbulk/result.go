package pgbulk

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind classifies a load failure.
type ErrorKind string

const (
	ErrorKindFileAccess ErrorKind = "file_access" // source missing or unreadable
	ErrorKindFormat     ErrorKind = "format"      // malformed row or non-convertible value
	ErrorKindSchema     ErrorKind = "schema"      // destination table missing, altered or not in catalog
	ErrorKindConstraint ErrorKind = "constraint"  // primary key or NOT NULL violation
	ErrorKindPermission ErrorKind = "permission"  // insufficient privilege on the destination
	ErrorKindConnection ErrorKind = "connection"  // lost or refused server connection
	ErrorKindTimeout    ErrorKind = "timeout"     // per-load timeout or run cancellation
	ErrorKindUnknown    ErrorKind = "unknown"
)

// Diagnostic describes why a load failed.
type Diagnostic struct {
	Kind ErrorKind `json:"kind"`

	// Code is the SQLSTATE for server errors, empty otherwise.
	Code string `json:"code,omitempty"`

	// Severity is the server-reported severity (ERROR, FATAL) or "ERROR" for client-side failures.
	Severity string `json:"severity"`

	// Line is the 1-based line in the source file (the header is line 1), zero when unknown.
	Line int `json:"line,omitempty"`

	// Column is the destination column the failing value was bound for, if known.
	Column string `json:"column,omitempty"`

	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	if d.Code != "" {
		fmt.Fprintf(&b, " [%s]", d.Code)
	}
	if d.Line > 0 {
		fmt.Fprintf(&b, " line %d", d.Line)
	}
	if d.Column != "" {
		fmt.Fprintf(&b, " column %s", d.Column)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// LoadStatus is the outcome of a single table load.
type LoadStatus string

const (
	LoadStatusLoaded LoadStatus = "loaded"
	LoadStatusFailed LoadStatus = "failed"
)

// LoadResult is the value a loader returns for one (table, file) pair.
// Failures are carried in Diagnostic, never returned as errors.
type LoadResult struct {
	Table  string     `json:"table"`
	File   string     `json:"file"`
	Status LoadStatus `json:"status"`

	// RowsCopied is the row count reported by the COPY command tag.
	RowsCopied int64 `json:"rows_copied"`

	// RowCount is the number of rows present in the table after the load.
	RowCount int64 `json:"row_count"`

	// Bytes and Checksum (SHA-256, hex) describe the source file as streamed.
	Bytes    int64  `json:"bytes"`
	Checksum string `json:"checksum,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`

	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
}

// Failed reports whether the load failed.
func (r LoadResult) Failed() bool {
	return r.Status == LoadStatusFailed
}

// TableCount is the post-batch row count of one destination table.
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`

	// Error is set when the table could not be counted (e.g. it does not exist).
	Error string `json:"error,omitempty"`
}

// BatchReport summarizes a batch run.
type BatchReport struct {
	RunID      string    `json:"run_id"`
	Database   string    `json:"database"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Results holds one entry per processed (table, file) pair, in input order.
	Results []LoadResult `json:"results"`

	// Counts holds one entry per distinct table, in first-seen order.
	Counts []TableCount `json:"counts"`

	// TotalRows is the sum of Counts.
	TotalRows int64 `json:"total_rows"`

	// Cancelled is set when the run stopped before processing every pair.
	Cancelled bool `json:"cancelled,omitempty"`
}

// ErrorCount returns the number of failed loads.
func (r *BatchReport) ErrorCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}

// Failures returns the failed loads.
func (r *BatchReport) Failures() []LoadResult {
	var out []LoadResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Err returns an error wrapping ErrLoadFailed when any load failed or the
// run was cancelled, nil otherwise.
func (r *BatchReport) Err() error {
	n := r.ErrorCount()
	switch {
	case n > 0:
		return fmt.Errorf("%d of %d loads failed: %w", n, len(r.Results), ErrLoadFailed)
	case r.Cancelled:
		return fmt.Errorf("run cancelled after %d loads: %w", len(r.Results), ErrLoadFailed)
	}
	return nil
}
