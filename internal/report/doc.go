// Package report renders a pgbulk.BatchReport for operators (text) or for
// machines (json). Rendering never changes the report.
package report
