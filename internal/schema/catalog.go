package schema

import (
	"fmt"
	"strings"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Catalog is an ordered, validated set of tables.
type Catalog struct {
	name             string
	defaultDelimiter string
	tables           []pgbulk.Table
	byName           map[string]int
}

var _ pgbulk.Catalog = (*Catalog)(nil)

// New builds a catalog after validating every identifier, rejecting
// duplicate tables or columns and primary keys that name unknown columns.
func New(name, defaultDelimiter string, tables []pgbulk.Table) (*Catalog, error) {
	if defaultDelimiter == "" {
		defaultDelimiter = pgbulk.DefaultDelimiter
	}
	if !pgbulk.IsSupportedDelimiter(defaultDelimiter) {
		return nil, fmt.Errorf("catalog %q: unsupported delimiter %q: %w", name, defaultDelimiter, pgbulk.ErrInvalidConfig)
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("catalog %q: no tables declared: %w", name, pgbulk.ErrInvalidConfig)
	}

	c := &Catalog{
		name:             name,
		defaultDelimiter: defaultDelimiter,
		tables:           make([]pgbulk.Table, 0, len(tables)),
		byName:           make(map[string]int, len(tables)),
	}

	for _, t := range tables {
		if err := validateTable(t); err != nil {
			return nil, fmt.Errorf("catalog %q: %w", name, err)
		}
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("catalog %q: duplicate table %q: %w", name, t.Name, pgbulk.ErrInvalidConfig)
		}
		c.byName[t.Name] = len(c.tables)
		c.tables = append(c.tables, t)
	}

	return c, nil
}

func validateTable(t pgbulk.Table) error {
	if err := ValidateIdentifier(t.Name); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns: %w", t.Name, pgbulk.ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		if err := ValidateIdentifier(col.Name); err != nil {
			return fmt.Errorf("table %q column: %w", t.Name, err)
		}
		if !col.Type.IsValid() {
			return fmt.Errorf("table %q column %q: unsupported type %q: %w", t.Name, col.Name, col.Type, pgbulk.ErrInvalidConfig)
		}
		if col.Type != pgbulk.ColumnDecimal && (col.Precision != 0 || col.Scale != 0) {
			return fmt.Errorf("table %q column %q: precision applies to decimal only: %w", t.Name, col.Name, pgbulk.ErrInvalidConfig)
		}
		if col.Scale < 0 || col.Precision < 0 || (col.Precision > 0 && col.Scale > col.Precision) {
			return fmt.Errorf("table %q column %q: invalid precision/scale %d,%d: %w", t.Name, col.Name, col.Precision, col.Scale, pgbulk.ErrInvalidConfig)
		}
		if seen[col.Name] {
			return fmt.Errorf("table %q: duplicate column %q: %w", t.Name, col.Name, pgbulk.ErrInvalidConfig)
		}
		seen[col.Name] = true
	}

	for _, pk := range t.PrimaryKey {
		if !seen[pk] {
			return fmt.Errorf("table %q: primary key column %q not declared: %w", t.Name, pk, pgbulk.ErrInvalidConfig)
		}
	}
	return nil
}

// Name returns the catalog name.
func (c *Catalog) Name() string { return c.name }

// DefaultDelimiter returns the field separator the variant's files use.
func (c *Catalog) DefaultDelimiter() string { return c.defaultDelimiter }

// Lookup returns the named table. Matching is exact: PostgreSQL folds
// unquoted identifiers to lower case and the catalog stores them that way.
func (c *Catalog) Lookup(name string) (pgbulk.Table, error) {
	i, ok := c.byName[name]
	if !ok {
		return pgbulk.Table{}, fmt.Errorf("%w %q in catalog %q (known: %s)",
			pgbulk.ErrUnknownTable, name, c.name, strings.Join(c.TableNames(), ", "))
	}
	return c.tables[i], nil
}

// Tables returns all tables in declaration order.
func (c *Catalog) Tables() []pgbulk.Table {
	out := make([]pgbulk.Table, len(c.tables))
	copy(out, c.tables)
	return out
}

// TableNames returns the table names in declaration order.
func (c *Catalog) TableNames() []string {
	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		names[i] = t.Name
	}
	return names
}

// Subset returns a catalog restricted to the named tables, preserving
// declaration order. Every name must be known.
func (c *Catalog) Subset(names []string) (*Catalog, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := c.Lookup(n); err != nil {
			return nil, err
		}
		want[n] = true
	}
	var tables []pgbulk.Table
	for _, t := range c.tables {
		if want[t.Name] {
			tables = append(tables, t)
		}
	}
	return New(c.name, c.defaultDelimiter, tables)
}

// DefaultLoads returns one (table, <table>.csv) pair per table in catalog order.
func DefaultLoads(c pgbulk.Catalog) []pgbulk.TableLoad {
	tables := c.Tables()
	loads := make([]pgbulk.TableLoad, len(tables))
	for i, t := range tables {
		loads[i] = pgbulk.TableLoad{Table: t.Name, File: t.Name + pgbulk.DefaultFileExtension}
	}
	return loads
}
