package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTableSQL_Players(t *testing.T) {
	c, err := Builtin(VariantCricket)
	require.NoError(t, err)
	players, err := c.Lookup("players")
	require.NoError(t, err)

	want := `CREATE TABLE "players" (
    "player_id" text,
    "match_id" integer,
    "player_name" text,
    "team" text
);`
	assert.Equal(t, want, CreateTableSQL(players, false))
	assert.True(t, strings.HasPrefix(CreateTableSQL(players, true), `CREATE TABLE IF NOT EXISTS "players"`))
}

func TestCreateTableSQL_LoanPrimaryKey(t *testing.T) {
	c, err := Builtin(VariantLoan)
	require.NoError(t, err)
	tbl, err := c.Lookup("loan_default")
	require.NoError(t, err)

	sql := CreateTableSQL(tbl, false)
	assert.Contains(t, sql, `"loan_id" text NOT NULL`)
	assert.Contains(t, sql, `"interest_rate" numeric(5,2)`)
	assert.True(t, strings.HasSuffix(sql, "PRIMARY KEY (\"loan_id\")\n);"))
}

func TestDDL_AllTablesInOrder(t *testing.T) {
	c, err := Builtin(VariantCricket)
	require.NoError(t, err)

	ddl := DDL(c, true)
	assert.Equal(t, 4, strings.Count(ddl, "CREATE TABLE IF NOT EXISTS"))
	assert.Less(t, strings.Index(ddl, `"matches"`), strings.Index(ddl, `"deliveries"`))
}

func TestQuoteColumns(t *testing.T) {
	assert.Equal(t, `"a", "b_c"`, QuoteColumns([]string{"a", "b_c"}))
}
