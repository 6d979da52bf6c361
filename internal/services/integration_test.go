package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pgbulk/internal/files/filesystem"
	"github.com/vvka-141/pgbulk/internal/schema"
	testhelpers "github.com/vvka-141/pgbulk/internal/testing"
	"github.com/vvka-141/pgbulk/internal/testing/fixtures"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

func cricketConfig(t *testing.T, connString, dbName string, loads ...pgbulk.TableLoad) pgbulk.LoadConfig {
	t.Helper()
	catalog, err := schema.Builtin(schema.VariantCricket)
	require.NoError(t, err)

	cfg := testhelpers.LoadConfigFor(t, connString, dbName)
	cfg.Catalog = catalog
	cfg.DataDir = fixtures.DataDir
	cfg.Delimiter = ","
	cfg.Loads = loads
	return cfg
}

func runBatch(t *testing.T, fs filesystem.FileSystemProvider, cfg pgbulk.LoadConfig) *pgbulk.BatchReport {
	t.Helper()
	rep, err := testhelpers.NewTestBatch(t, fs).Run(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, rep)
	return rep
}

func TestIntegration_ResetAndLoadPlayers(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	dbName := testhelpers.UniqueDBName("pgbulk_players")
	t.Cleanup(func() { testhelpers.CleanupTestDB(t, connString, dbName) })

	cfg := cricketConfig(t, connString, dbName, pgbulk.TableLoad{Table: "players", File: "players.csv"})
	cfg.Reset = true

	rep := runBatch(t, fixtures.CricketSmall(), cfg)

	require.Len(t, rep.Results, 1)
	res := rep.Results[0]
	assert.Equal(t, pgbulk.LoadStatusLoaded, res.Status, "diagnostic: %v", res.Diagnostic)
	assert.Equal(t, int64(2), res.RowsCopied)
	assert.Equal(t, int64(2), res.RowCount)
	assert.NotEmpty(t, res.Checksum)
	assert.Equal(t, []pgbulk.TableCount{{Table: "players", Rows: 2}}, rep.Counts)
	assert.NoError(t, rep.Err())

	pool := testhelpers.GetTestPool(t, connString, dbName)
	assert.Equal(t, int64(2), testhelpers.CountRows(t, pool, "players"))
	// Reset creates the whole catalog, not only the loaded tables.
	assert.Equal(t, int64(0), testhelpers.CountRows(t, pool, "innings"))
}

func TestIntegration_MissingFileDoesNotStopBatch(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	dbName := testhelpers.UniqueDBName("pgbulk_missing")
	t.Cleanup(func() { testhelpers.CleanupTestDB(t, connString, dbName) })

	cfg := cricketConfig(t, connString, dbName,
		pgbulk.TableLoad{Table: "players", File: "players.csv"},
		pgbulk.TableLoad{Table: "matches", File: "missing.csv"},
		pgbulk.TableLoad{Table: "innings", File: "innings.csv"},
	)

	rep := runBatch(t, fixtures.CricketSmall(), cfg)

	require.Len(t, rep.Results, 3)
	assert.False(t, rep.Results[0].Failed())
	require.True(t, rep.Results[1].Failed())
	assert.Equal(t, pgbulk.ErrorKindFileAccess, rep.Results[1].Diagnostic.Kind)
	assert.False(t, rep.Results[2].Failed(), "diagnostic: %v", rep.Results[2].Diagnostic)

	assert.Equal(t, []pgbulk.TableCount{
		{Table: "players", Rows: 2},
		{Table: "matches", Rows: 0},
		{Table: "innings", Rows: 1},
	}, rep.Counts)
	assert.Equal(t, int64(3), rep.TotalRows)

	assert.Equal(t, 1, rep.ErrorCount())
	assert.ErrorIs(t, rep.Err(), pgbulk.ErrLoadFailed)
}

// releaseAfterFirst rolls back tx once the first load of the batch finishes.
type releaseAfterFirst struct {
	tx pgx.Tx
}

func (r *releaseAfterFirst) LoadStarted(int, int, pgbulk.TableLoad) {}

func (r *releaseAfterFirst) LoadFinished(index, _ int, _ pgbulk.LoadResult) {
	if index == 0 {
		_ = r.tx.Rollback(context.Background())
	}
}

func TestIntegration_TimedOutLoadDoesNotBreakNextLoad(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	dbName := testhelpers.UniqueDBName("pgbulk_timeout")
	t.Cleanup(func() { testhelpers.CleanupTestDB(t, connString, dbName) })

	ctx := context.Background()
	seed := cricketConfig(t, connString, dbName, pgbulk.TableLoad{Table: "players", File: "players.csv"})
	require.NoError(t, runBatch(t, fixtures.CricketSmall(), seed).Err())

	pool := testhelpers.GetTestPool(t, connString, dbName)
	blocker, err := pool.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = blocker.Rollback(ctx) })
	_, err = blocker.Exec(ctx, "LOCK TABLE players IN ACCESS EXCLUSIVE MODE")
	require.NoError(t, err)

	cfg := cricketConfig(t, connString, dbName,
		pgbulk.TableLoad{Table: "players", File: "players.csv"},
		pgbulk.TableLoad{Table: "matches", File: "matches.csv"},
	)
	cfg.LoadTimeout = 500 * time.Millisecond

	rep, err := testhelpers.NewTestBatch(t, fixtures.CricketSmall()).
		WithObserver(&releaseAfterFirst{tx: blocker}).
		Run(ctx, cfg)
	require.NoError(t, err)

	require.Len(t, rep.Results, 2)
	require.True(t, rep.Results[0].Failed())
	assert.Equal(t, pgbulk.ErrorKindTimeout, rep.Results[0].Diagnostic.Kind)

	second := rep.Results[1]
	assert.Equal(t, pgbulk.LoadStatusLoaded, second.Status, "diagnostic: %v", second.Diagnostic)
	assert.Equal(t, int64(1), second.RowsCopied)

	assert.Equal(t, []pgbulk.TableCount{
		{Table: "players", Rows: 2},
		{Table: "matches", Rows: 1},
	}, rep.Counts)
	assert.Equal(t, 1, rep.ErrorCount())
}

func TestIntegration_KeepNulls(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)

	tests := []struct {
		name      string
		keepNulls bool
		wantName  *string
	}{
		{"keep nulls", true, nil},
		{"empty strings", false, ptr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbName := testhelpers.UniqueDBName("pgbulk_nulls")
			t.Cleanup(func() { testhelpers.CleanupTestDB(t, connString, dbName) })

			cfg := cricketConfig(t, connString, dbName, pgbulk.TableLoad{Table: "players", File: "players.csv"})
			cfg.KeepNulls = tt.keepNulls
			rep := runBatch(t, fixtures.CricketEmptyFields(), cfg)
			require.NoError(t, rep.Err())

			pool := testhelpers.GetTestPool(t, connString, dbName)
			ctx := context.Background()

			var name *string
			require.NoError(t, pool.QueryRow(ctx, "SELECT player_name FROM players WHERE player_id = 'P3'").Scan(&name))
			assert.Equal(t, tt.wantName, name)

			// Empty integer fields load as NULL either way.
			var matchIsNull bool
			require.NoError(t, pool.QueryRow(ctx, "SELECT match_id IS NULL FROM players WHERE player_id = 'P4'").Scan(&matchIsNull))
			assert.True(t, matchIsNull)
		})
	}
}

func ptr(s string) *string { return &s }

func TestIntegration_BadRowLeavesTableUnchanged(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	dbName := testhelpers.UniqueDBName("pgbulk_badrow")
	t.Cleanup(func() { testhelpers.CleanupTestDB(t, connString, dbName) })

	good := cricketConfig(t, connString, dbName, pgbulk.TableLoad{Table: "players", File: "players.csv"})
	rep := runBatch(t, fixtures.CricketSmall(), good)
	require.NoError(t, rep.Err())

	bad := cricketConfig(t, connString, dbName, pgbulk.TableLoad{Table: "players", File: "players.csv"})
	rep = runBatch(t, fixtures.CricketBadMatchID(), bad)

	require.Len(t, rep.Results, 1)
	res := rep.Results[0]
	require.True(t, res.Failed())
	assert.Equal(t, pgbulk.ErrorKindFormat, res.Diagnostic.Kind)
	assert.Equal(t, "22P02", res.Diagnostic.Code)
	assert.Equal(t, 3, res.Diagnostic.Line)
	assert.Equal(t, "match_id", res.Diagnostic.Column)

	pool := testhelpers.GetTestPool(t, connString, dbName)
	assert.Equal(t, int64(2), testhelpers.CountRows(t, pool, "players"))
}

func TestIntegration_ResetEmptiesExistingDatabase(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	dbName := testhelpers.UniqueDBName("pgbulk_reset")
	t.Cleanup(func() { testhelpers.CleanupTestDB(t, connString, dbName) })

	cfg := cricketConfig(t, connString, dbName, pgbulk.TableLoad{Table: "players", File: "players.csv"})
	rep := runBatch(t, fixtures.CricketSmall(), cfg)
	require.NoError(t, rep.Err())

	cfg.Reset = true
	require.NoError(t, testhelpers.NewTestProvisioner(t).Prepare(context.Background(), cfg))

	pool := testhelpers.GetTestPool(t, connString, dbName)
	assert.Equal(t, int64(0), testhelpers.CountRows(t, pool, "players"))
}

func TestIntegration_ExistingDatabaseWithoutTables(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)
	dbName := testhelpers.UniqueDBName("pgbulk_notables")
	t.Cleanup(testhelpers.CreateTestDB(t, connString, dbName))

	cfg := cricketConfig(t, connString, dbName, pgbulk.TableLoad{Table: "players", File: "players.csv"})
	rep := runBatch(t, fixtures.CricketSmall(), cfg)

	require.Len(t, rep.Results, 1)
	require.True(t, rep.Results[0].Failed())
	assert.Equal(t, pgbulk.ErrorKindSchema, rep.Results[0].Diagnostic.Kind)
	require.Len(t, rep.Counts, 1)
	assert.NotEmpty(t, rep.Counts[0].Error)

	t.Run("create tables", func(t *testing.T) {
		cfg.CreateTables = true
		rep := runBatch(t, fixtures.CricketSmall(), cfg)
		require.NoError(t, rep.Err())
		assert.Equal(t, int64(2), rep.TotalRows)
	})
}

func TestIntegration_ResetRefusesMaintenanceDatabase(t *testing.T) {
	connString := testhelpers.RequireDatabase(t)

	cfg := testhelpers.LoadConfigFor(t, connString, "")
	cfg.DatabaseName = cfg.MaintenanceDatabase
	cfg.Reset = true
	cfg.Force = true
	catalog, err := schema.Builtin(schema.VariantCricket)
	require.NoError(t, err)
	cfg.Catalog = catalog

	err = testhelpers.NewTestProvisioner(t).Prepare(context.Background(), cfg)
	assert.ErrorIs(t, err, pgbulk.ErrInvalidConfig)
}
