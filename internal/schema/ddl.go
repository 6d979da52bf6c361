package schema

import (
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// CreateTableSQL renders the CREATE TABLE statement for t.
func CreateTableSQL(t pgbulk.Table, ifNotExists bool) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(pgx.Identifier{t.Name}.Sanitize())
	sb.WriteString(" (\n")
	for i, c := range t.Columns {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString("    ")
		sb.WriteString(pgx.Identifier{c.Name}.Sanitize())
		sb.WriteString(" ")
		sb.WriteString(c.SQLType())
		if c.NotNull {
			sb.WriteString(" NOT NULL")
		}
	}
	if len(t.PrimaryKey) > 0 {
		sb.WriteString(",\n    PRIMARY KEY (")
		sb.WriteString(QuoteColumns(t.PrimaryKey))
		sb.WriteString(")")
	}
	sb.WriteString("\n);")
	return sb.String()
}

// DDL renders CREATE TABLE statements for every table in the catalog,
// separated by blank lines.
func DDL(c pgbulk.Catalog, ifNotExists bool) string {
	tables := c.Tables()
	stmts := make([]string, len(tables))
	for i, t := range tables {
		stmts[i] = CreateTableSQL(t, ifNotExists)
	}
	return strings.Join(stmts, "\n\n") + "\n"
}

// QuoteColumns renders a comma separated list of quoted identifiers.
func QuoteColumns(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = pgx.Identifier{n}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
