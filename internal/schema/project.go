package schema

import (
	"fmt"
	"strings"

	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// CustomVariant names catalogs declared in pgbulk.yaml.
const CustomVariant = "custom"

// FromProject builds the catalog a project loads into: the tables declared
// in pgbulk.yaml when present, otherwise the named built-in variant
// (cricket when unset).
func FromProject(cfg *config.ProjectConfig) (*Catalog, error) {
	if cfg == nil || (len(cfg.Tables) == 0 && cfg.Schema == "") {
		return Builtin(VariantCricket)
	}
	if len(cfg.Tables) == 0 {
		return Builtin(cfg.Schema)
	}

	delim := cfg.Delimiter
	if delim != "" {
		d, err := config.NormalizeDelimiter(delim)
		if err != nil {
			return nil, err
		}
		delim = d
	}

	tables := make([]pgbulk.Table, len(cfg.Tables))
	for i, tc := range cfg.Tables {
		cols := make([]pgbulk.Column, len(tc.Columns))
		for j, cc := range tc.Columns {
			cols[j] = pgbulk.Column{
				Name:      cc.Name,
				Type:      pgbulk.ColumnType(strings.ToLower(cc.Type)),
				Precision: cc.Precision,
				Scale:     cc.Scale,
				NotNull:   cc.NotNull,
			}
		}
		tables[i] = pgbulk.Table{Name: tc.Name, Columns: cols, PrimaryKey: tc.PrimaryKey}
	}

	c, err := New(CustomVariant, delim, tables)
	if err != nil {
		return nil, fmt.Errorf("pgbulk.yaml tables: %w", err)
	}
	return c, nil
}
