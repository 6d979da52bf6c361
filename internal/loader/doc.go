// Package loader streams one delimited file into one table with COPY.
//
// A load runs in its own transaction:
//
//	BEGIN
//	LOCK TABLE t IN ACCESS EXCLUSIVE MODE
//	COPY t (c1, c2, ...) FROM STDIN WITH (FORMAT csv, HEADER true, ...)
//	COMMIT
//	SELECT count(*) FROM t
//
// COPY aborts on the first bad row, so a file is loaded completely or not at
// all. Every failure is classified into a pgbulk.Diagnostic and returned in the
// LoadResult; Load never returns an error and never writes to a console.
//
// Identifiers come from the schema catalog and are quoted with
// pgx.Identifier. The delimiter is restricted to pgbulk.SupportedDelimiters.
package loader
