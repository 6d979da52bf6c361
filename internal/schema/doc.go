// Package schema holds the catalog of destination tables a batch may load into.
//
// The catalog is the allow-list for every identifier that reaches SQL: table
// and column names are validated when the catalog is built and quoted with
// pgx.Identifier when statements are rendered. Two variants are built in:
//
//   - cricket: matches, players, innings, deliveries (comma-delimited)
//   - loan:    loan_default with primary key loan_id (pipe-delimited)
//
// Custom catalogs are declared in pgbulk.yaml and built with New.
package schema
