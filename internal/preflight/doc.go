// Package preflight checks source files against the catalog without a
// PostgreSQL server. Each file is parsed by an in-process DuckDB with the
// destination column types, so malformed rows, values that would not
// convert, NULLs in NOT NULL columns and duplicate primary keys are found
// before anything is copied.
//
// Passing preflight does not guarantee the load succeeds: the two engines
// differ in corner cases of date and numeric parsing.
package preflight
