//go:build conntest

package conntest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/internal/db"
	"github.com/vvka-141/pgbulk/internal/testinfra"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

func TestStandard_Connects(t *testing.T) {
	pool, err := connect(t, parse(t, stdContainer.ConnString))
	require.NoError(t, err)

	var version string
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT version()").Scan(&version))
	assert.Contains(t, version, "PostgreSQL")
}

func TestStandard_WrongPassword(t *testing.T) {
	cfg := parse(t, stdContainer.ConnString)
	cfg.Password = "wrong"

	_, err := connect(t, cfg)
	require.ErrorIs(t, err, pgbulk.ErrConnectionFailed)
	assert.Contains(t, err.Error(), "password authentication failed")
}

func TestStandard_MissingDatabaseSuggestsReset(t *testing.T) {
	cfg := parse(t, stdContainer.ConnString)
	cfg.Database = "no_such_db"

	_, err := connect(t, cfg)
	require.ErrorIs(t, err, pgbulk.ErrConnectionFailed)
	assert.Contains(t, err.Error(), "--reset")
}

func TestStandard_LoadConnCopiesCSV(t *testing.T) {
	pool, err := connect(t, parse(t, stdContainer.ConnString))
	require.NoError(t, err)
	ctx := context.Background()

	lc, err := db.AcquirePinnedLoadConn(ctx, pool)
	require.NoError(t, err)
	defer lc.Release()

	_, err = lc.Session().Exec(ctx, `CREATE TEMP TABLE conntest_pinned (a text, b integer)`)
	require.NoError(t, err)

	tx, err := lc.Begin(ctx)
	require.NoError(t, err)
	tag, err := tx.CopyFrom(ctx, strings.NewReader("a,b\nx,1\ny,2\n"), `COPY conntest_pinned (a, b) FROM STDIN WITH (FORMAT csv, HEADER true)`)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.EqualValues(t, 2, tag.RowsAffected())

	var n int64
	require.NoError(t, lc.QueryRow(ctx, `SELECT count(*) FROM conntest_pinned`).Scan(&n))
	assert.EqualValues(t, 2, n)
}

func TestStandard_PinnedLoadConnSurvivesTimedOutLoad(t *testing.T) {
	pool, err := connect(t, parse(t, stdContainer.ConnString))
	require.NoError(t, err)
	ctx := context.Background()

	lc, err := db.AcquirePinnedLoadConn(ctx, pool)
	require.NoError(t, err)
	defer lc.Release()
	first := lc.Session().Conn()

	tx, err := lc.Begin(ctx)
	require.NoError(t, err)
	timeoutCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	_, err = tx.Exec(timeoutCtx, "SELECT pg_sleep(5)")
	cancel()
	require.Error(t, err)
	_ = tx.Rollback(ctx)

	// The next load must not inherit the dead session.
	tx, err = lc.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	var one int
	require.NoError(t, lc.QueryRow(ctx, "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
	if first.IsClosed() {
		assert.NotSame(t, first, lc.Session().Conn(), "a closed session is replaced")
	}
}

func TestMTLS_CertificatesFromProjectConfig(t *testing.T) {
	project := &config.ProjectConfig{Connection: config.ConnectionConfig{
		SSLCert:     certPaths.ClientCert,
		SSLKey:      certPaths.ClientKey,
		SSLRootCert: certPaths.CACert,
	}}

	cfg, _, err := db.ResolveConnectionParams(mtlsContainer.ConnString, nil, nil, &db.EnvVars{}, project)
	require.NoError(t, err)
	cfg.Password = ""

	pool, err := connect(t, cfg)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(context.Background()))
}

func TestMTLS_WithoutClientCertFails(t *testing.T) {
	cfg := parse(t, mtlsContainer.ConnString)
	cfg.SSLMode = "require"

	_, err := connect(t, cfg)
	require.ErrorIs(t, err, pgbulk.ErrConnectionFailed)
}

func TestMTLS_ForeignClientCertFails(t *testing.T) {
	other, err := testinfra.GenerateCertBundle([]string{"localhost"})
	require.NoError(t, err)
	otherPaths, err := other.WriteToDir(t.TempDir())
	require.NoError(t, err)

	cfg := parse(t, mtlsContainer.ConnString)
	cfg.AdditionalParams["sslcert"] = otherPaths.ClientCert
	cfg.AdditionalParams["sslkey"] = otherPaths.ClientKey
	cfg.AdditionalParams["sslrootcert"] = certPaths.CACert

	_, err = connect(t, cfg)
	require.Error(t, err)
}
