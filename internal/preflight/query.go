package preflight

import (
	"fmt"
	"strings"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// duckType maps a column to the DuckDB type read_csv parses it as.
func duckType(c pgbulk.Column) string {
	switch c.Type {
	case pgbulk.ColumnInteger:
		return "INTEGER"
	case pgbulk.ColumnDecimal:
		if c.Precision > 0 {
			return fmt.Sprintf("DECIMAL(%d,%d)", c.Precision, c.Scale)
		}
		return "DOUBLE"
	case pgbulk.ColumnDate:
		return "DATE"
	default:
		return "VARCHAR"
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// readCSV renders the read_csv table function call for one file. Options
// mirror the COPY statement the loader issues.
func readCSV(t pgbulk.Table, path, delimiter string, keepNulls bool) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteLiteral(c.Name) + ": " + quoteLiteral(duckType(c))
	}

	opts := []string{
		quoteLiteral(path),
		"header = true",
		"delim = " + quoteLiteral(delimiter),
		`quote = '"'`,
		`escape = '"'`,
		"nullstr = ''",
		"dateformat = '%Y-%m-%d'",
		"auto_detect = false",
		"strict_mode = true",
		"columns = {" + strings.Join(cols, ", ") + "}",
	}
	if text := t.TextColumns(); !keepNulls && len(text) > 0 {
		quoted := make([]string, len(text))
		for i, n := range text {
			quoted[i] = quoteLiteral(n)
		}
		opts = append(opts, "force_not_null = ["+strings.Join(quoted, ", ")+"]")
	}
	return "read_csv(" + strings.Join(opts, ", ") + ")"
}

// checkQuery counts rows, NULLs per NOT NULL column and distinct primary
// keys in a single scan. Result columns: rows, then one NULL count per
// notNull entry, then the distinct key count when the table has a key.
func checkQuery(t pgbulk.Table, path, delimiter string, keepNulls bool) (query string, notNull []string) {
	selects := []string{"count(*)"}
	for _, c := range t.Columns {
		if c.NotNull || contains(t.PrimaryKey, c.Name) {
			notNull = append(notNull, c.Name)
			selects = append(selects, "count(*) - count("+quoteIdent(c.Name)+")")
		}
	}
	switch len(t.PrimaryKey) {
	case 0:
	case 1:
		selects = append(selects, "count(DISTINCT "+quoteIdent(t.PrimaryKey[0])+")")
	default:
		keys := make([]string, len(t.PrimaryKey))
		for i, k := range t.PrimaryKey {
			keys[i] = quoteIdent(k)
		}
		selects = append(selects, "count(DISTINCT row("+strings.Join(keys, ", ")+"))")
	}
	return "SELECT " + strings.Join(selects, ", ") + " FROM " + readCSV(t, path, delimiter, keepNulls), notNull
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
