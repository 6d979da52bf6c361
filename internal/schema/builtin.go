package schema

import (
	"fmt"
	"sort"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

const (
	VariantCricket = "cricket"
	VariantLoan    = "loan"
)

func text(name string) pgbulk.Column    { return pgbulk.Column{Name: name, Type: pgbulk.ColumnText} }
func integer(name string) pgbulk.Column { return pgbulk.Column{Name: name, Type: pgbulk.ColumnInteger} }
func date(name string) pgbulk.Column    { return pgbulk.Column{Name: name, Type: pgbulk.ColumnDate} }

func decimal(name string, precision, scale int) pgbulk.Column {
	return pgbulk.Column{Name: name, Type: pgbulk.ColumnDecimal, Precision: precision, Scale: scale}
}

// cricketTables has no keys: every column is nullable and duplicates are allowed.
func cricketTables() []pgbulk.Table {
	return []pgbulk.Table{
		{
			Name: "matches",
			Columns: []pgbulk.Column{
				integer("match_id"),
				text("season"),
				date("match_date"),
				text("venue"),
				text("city"),
				text("team1"),
				text("team2"),
				text("toss_winner"),
				text("toss_decision"),
				text("winner"),
				integer("result_margin"),
				text("result_type"),
				text("player_of_match"),
			},
		},
		{
			Name: "players",
			Columns: []pgbulk.Column{
				text("player_id"),
				integer("match_id"),
				text("player_name"),
				text("team"),
			},
		},
		{
			Name: "innings",
			Columns: []pgbulk.Column{
				integer("match_id"),
				integer("innings_no"),
				text("batting_team"),
				text("bowling_team"),
				integer("total_runs"),
				integer("wickets"),
				decimal("overs", 4, 1),
			},
		},
		{
			Name: "deliveries",
			Columns: []pgbulk.Column{
				integer("match_id"),
				integer("innings_no"),
				integer("over_no"),
				integer("ball_no"),
				text("batter"),
				text("bowler"),
				text("non_striker"),
				integer("runs_batter"),
				integer("runs_extras"),
				integer("runs_total"),
				text("extras_type"),
				text("wicket_kind"),
				text("player_out"),
			},
		},
	}
}

func loanTables() []pgbulk.Table {
	loanID := text("loan_id")
	loanID.NotNull = true
	return []pgbulk.Table{
		{
			Name: "loan_default",
			Columns: []pgbulk.Column{
				loanID,
				integer("age"),
				integer("income"),
				integer("loan_amount"),
				integer("credit_score"),
				integer("months_employed"),
				integer("num_credit_lines"),
				decimal("interest_rate", 5, 2),
				integer("loan_term"),
				decimal("dti_ratio", 4, 2),
				text("education"),
				text("employment_type"),
				text("marital_status"),
				text("has_mortgage"),
				text("has_dependents"),
				text("loan_purpose"),
				text("has_co_signer"),
				integer("default_flag"),
			},
			PrimaryKey: []string{"loan_id"},
		},
	}
}

var builtins = map[string]struct {
	delimiter string
	tables    func() []pgbulk.Table
}{
	VariantCricket: {",", cricketTables},
	VariantLoan:    {"|", loanTables},
}

// Builtin returns a built-in catalog by variant name.
func Builtin(variant string) (*Catalog, error) {
	b, ok := builtins[variant]
	if !ok {
		return nil, fmt.Errorf("unknown schema variant %q (available: %v): %w", variant, Variants(), pgbulk.ErrInvalidConfig)
	}
	return New(variant, b.delimiter, b.tables())
}

// Variants lists the built-in variant names, sorted.
func Variants() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
