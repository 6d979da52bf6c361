package loader

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgbulk/internal/schema"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// CopyOptions controls how COPY parses the source file.
type CopyOptions struct {
	Delimiter string
	KeepNulls bool
}

// BuildCopyStatement renders the COPY ... FROM STDIN statement for t.
//
// With KeepNulls every column gets FORCE_NULL, so both unquoted and quoted
// empty fields load as NULL. Without it, text columns get FORCE_NOT_NULL and
// load empty fields as empty strings; other columns keep CSV's default of
// NULL for an unquoted empty field since '' is not a valid number or date.
func BuildCopyStatement(t pgbulk.Table, opts CopyOptions) (string, error) {
	delim := opts.Delimiter
	if delim == "" {
		delim = pgbulk.DefaultDelimiter
	}
	if !pgbulk.IsSupportedDelimiter(delim) {
		return "", fmt.Errorf("unsupported delimiter %q: %w", delim, pgbulk.ErrInvalidConfig)
	}

	options := []string{
		"FORMAT csv",
		"HEADER true",
		"DELIMITER " + delimiterLiteral(delim),
		"ENCODING 'UTF8'",
	}
	if opts.KeepNulls {
		options = append(options, "FORCE_NULL ("+schema.QuoteColumns(t.ColumnNames())+")")
	} else if text := t.TextColumns(); len(text) > 0 {
		options = append(options, "FORCE_NOT_NULL ("+schema.QuoteColumns(text)+")")
	}

	return fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (%s)",
		pgx.Identifier{t.Name}.Sanitize(),
		schema.QuoteColumns(t.ColumnNames()),
		strings.Join(options, ", "),
	), nil
}

// delimiterLiteral quotes a supported delimiter. None of them contain a quote.
func delimiterLiteral(d string) string {
	if d == "\t" {
		return `E'\t'`
	}
	return "'" + d + "'"
}

// LockStatement takes the table-level lock held for the duration of a load.
func LockStatement(table string) string {
	return "LOCK TABLE " + pgx.Identifier{table}.Sanitize() + " IN ACCESS EXCLUSIVE MODE"
}

// CountStatement counts the rows of a table.
func CountStatement(table string) string {
	return "SELECT count(*) FROM " + pgx.Identifier{table}.Sanitize()
}
