package pgbulk

import (
	"strconv"
	"strings"
)

// ColumnType is the declared semantic type of a destination column.
type ColumnType string

const (
	ColumnText    ColumnType = "text"
	ColumnInteger ColumnType = "integer"
	ColumnDecimal ColumnType = "decimal"
	ColumnDate    ColumnType = "date"
)

// IsValid reports whether t is one of the supported column types.
func (t ColumnType) IsValid() bool {
	switch t {
	case ColumnText, ColumnInteger, ColumnDecimal, ColumnDate:
		return true
	}
	return false
}

// Column describes one destination column. Columns are nullable unless NotNull is set.
type Column struct {
	Name string
	Type ColumnType

	// Precision and Scale apply to ColumnDecimal; zero means unconstrained numeric.
	Precision int
	Scale     int

	NotNull bool
}

// SQLType renders the PostgreSQL type for the column.
func (c Column) SQLType() string {
	switch c.Type {
	case ColumnInteger:
		return "integer"
	case ColumnDecimal:
		if c.Precision > 0 {
			return "numeric(" + strconv.Itoa(c.Precision) + "," + strconv.Itoa(c.Scale) + ")"
		}
		return "numeric"
	case ColumnDate:
		return "date"
	default:
		return "text"
	}
}

// Table is a destination table with a fixed, ordered column layout.
// Source files are mapped onto Columns strictly by position.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// TextColumns returns the names of the text-typed columns in declaration order.
func (t Table) TextColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Type == ColumnText {
			names = append(names, c.Name)
		}
	}
	return names
}

// Column looks up a column by name (case-insensitive).
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// Catalog is the allow-list of destination tables. No SQL is ever produced
// for a table name that Lookup rejects.
type Catalog interface {
	// Name identifies the catalog, e.g. "cricket", "loan" or "custom".
	Name() string

	// Lookup returns the table with the given name or an error wrapping ErrUnknownTable.
	Lookup(name string) (Table, error)

	// Tables returns all tables in declaration order.
	Tables() []Table
}
