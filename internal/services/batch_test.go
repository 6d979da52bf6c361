package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgbulk/internal/files/filesystem"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

type stubProvisioner struct {
	err   error
	calls int
}

func (p *stubProvisioner) Prepare(_ context.Context, _ pgbulk.LoadConfig) error {
	p.calls++
	return p.err
}

func newTestBatch(prov pgbulk.Provisioner, conn *mockLoadConn, l *mockLoader) *BatchService {
	svc := NewBatchService(validFactory(), prov, filesystem.NewMemoryFileSystem("/data"), &mockLogger{})
	svc.connect = func(_ context.Context, _ *pgbulk.ConnectionConfig, _ string) (pgbulk.LoadConn, func(), error) {
		return conn, noop, nil
	}
	svc.newLoader = func(_ pgbulk.Catalog, _ filesystem.FileSystemProvider, _ pgbulk.Logger) pgbulk.Loader {
		return l
	}
	svc.newRunID = func() string { return "run-1" }
	return svc
}

func failedResult(kind pgbulk.ErrorKind, msg string) pgbulk.LoadResult {
	return pgbulk.LoadResult{
		Status:     pgbulk.LoadStatusFailed,
		Diagnostic: &pgbulk.Diagnostic{Kind: kind, Severity: "ERROR", Message: msg},
	}
}

func TestNewBatchService_NilDeps(t *testing.T) {
	fs := filesystem.NewMemoryFileSystem("/")
	lg := &mockLogger{}

	assert.Panics(t, func() { NewBatchService(nil, nil, fs, lg) })
	assert.Panics(t, func() { NewBatchService(validFactory(), nil, nil, lg) })
	assert.Panics(t, func() { NewBatchService(validFactory(), nil, fs, nil) })
	assert.NotPanics(t, func() { NewBatchService(validFactory(), nil, fs, lg) })
}

func TestRun_InvalidConfig(t *testing.T) {
	svc := newTestBatch(nil, &mockLoadConn{}, &mockLoader{})

	_, err := svc.Run(context.Background(), pgbulk.LoadConfig{})
	require.ErrorIs(t, err, pgbulk.ErrInvalidConfig)
	assert.Equal(t, pgbulk.ExitConfigError, pgbulk.ExitCodeForError(err))
}

func TestRun_DefaultLoadsCoverCatalogInOrder(t *testing.T) {
	conn := &mockLoadConn{counts: map[string]int64{"matches": 3, "players": 5, "innings": 0, "deliveries": 7}}
	l := &mockLoader{}
	svc := newTestBatch(nil, conn, l)

	cfg := validConfig(t)
	cfg.DataDir = "/data"
	report, err := svc.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, l.requests, 4)
	assert.Equal(t, "matches", l.requests[0].Table)
	assert.Equal(t, filepath.Join("/data", "matches.csv"), l.requests[0].Path)
	assert.Equal(t, ",", l.requests[0].Delimiter)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, "cricket", report.Database)
	assert.Equal(t, int64(15), report.TotalRows)
	require.Len(t, report.Counts, 4)
	assert.Equal(t, pgbulk.TableCount{Table: "deliveries", Rows: 7}, report.Counts[3])
	assert.NoError(t, report.Err())
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestRun_FailureDoesNotStopBatch(t *testing.T) {
	conn := &mockLoadConn{counts: map[string]int64{"matches": 10, "players": 0, "innings": 4}}
	l := &mockLoader{results: map[string]pgbulk.LoadResult{
		"players": failedResult(pgbulk.ErrorKindFileAccess, "open source file: no such file"),
	}}
	obs := &recordingObserver{}
	svc := newTestBatch(nil, conn, l).WithObserver(obs)

	cfg := validConfig(t)
	cfg.Loads = []pgbulk.TableLoad{
		{Table: "matches", File: "m.csv"},
		{Table: "players", File: "missing.csv"},
		{Table: "innings", File: "i.csv"},
	}
	report, err := svc.Run(context.Background(), cfg)
	require.NoError(t, err, "per-load failures belong to the report")

	require.Len(t, report.Results, 3)
	assert.False(t, report.Results[0].Failed())
	assert.True(t, report.Results[1].Failed())
	assert.False(t, report.Results[2].Failed())
	assert.Equal(t, 1, report.ErrorCount())

	assert.Equal(t, []string{"matches", "players", "innings"}, obs.started)
	assert.Equal(t, []string{"loaded:matches", "failed:players", "loaded:innings"}, obs.finished)

	assert.Equal(t, int64(14), report.TotalRows)
	require.ErrorIs(t, report.Err(), pgbulk.ErrLoadFailed)
	assert.Equal(t, pgbulk.ExitLoadFailed, pgbulk.ExitCodeForError(report.Err()))
}

func TestRun_RepeatedTableCountedOnce(t *testing.T) {
	conn := &mockLoadConn{counts: map[string]int64{"matches": 6}}
	svc := newTestBatch(nil, conn, &mockLoader{})

	cfg := validConfig(t)
	cfg.Loads = []pgbulk.TableLoad{
		{Table: "matches", File: "a.csv"},
		{Table: "matches", File: "b.csv"},
	}
	report, err := svc.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Len(t, report.Results, 2)
	assert.Equal(t, []pgbulk.TableCount{{Table: "matches", Rows: 6}}, report.Counts)
	assert.Equal(t, int64(6), report.TotalRows)
}

func TestRun_CountErrorRecorded(t *testing.T) {
	conn := &mockLoadConn{
		counts:    map[string]int64{"matches": 2},
		countErrs: map[string]error{"players": errors.New(`relation "players" does not exist`)},
	}
	svc := newTestBatch(nil, conn, &mockLoader{})

	cfg := validConfig(t)
	cfg.Loads = []pgbulk.TableLoad{{Table: "matches", File: "m.csv"}, {Table: "players", File: "p.csv"}}
	report, err := svc.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, report.Counts, 2)
	assert.Contains(t, report.Counts[1].Error, "does not exist")
	assert.Equal(t, int64(2), report.TotalRows)
}

func TestRun_PathResolution(t *testing.T) {
	l := &mockLoader{}
	svc := newTestBatch(nil, &mockLoadConn{}, l)

	cfg := validConfig(t)
	cfg.ProjectPath = "/proj"
	cfg.Loads = []pgbulk.TableLoad{
		{Table: "matches", File: "sub/m.csv"},
		{Table: "players", File: "/abs/p.csv", Delimiter: "|"},
	}
	_, err := svc.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/proj", "sub", "m.csv"), l.requests[0].Path)
	assert.Equal(t, "/abs/p.csv", l.requests[1].Path)
	assert.Equal(t, "|", l.requests[1].Delimiter)
}

func TestRun_CancellationStopsBetweenLoads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := &mockLoadConn{counts: map[string]int64{"matches": 1, "players": 0, "innings": 0}}
	l := &mockLoader{onLoad: func(req pgbulk.LoadRequest) {
		if req.Table == "matches" {
			cancel()
		}
	}}
	svc := newTestBatch(nil, conn, l)

	cfg := validConfig(t)
	cfg.Loads = []pgbulk.TableLoad{
		{Table: "matches", File: "m.csv"},
		{Table: "players", File: "p.csv"},
		{Table: "innings", File: "i.csv"},
	}
	report, err := svc.Run(ctx, cfg)
	require.NoError(t, err)

	assert.True(t, report.Cancelled)
	assert.Len(t, report.Results, 1)
	assert.Len(t, report.Counts, 3, "counts still run after cancellation")
	assert.Equal(t, int64(1), report.TotalRows)
	require.ErrorIs(t, report.Err(), pgbulk.ErrLoadFailed)
}

func TestRun_StopLetsCurrentLoadFinish(t *testing.T) {
	stop := make(chan struct{})

	conn := &mockLoadConn{counts: map[string]int64{"matches": 1, "players": 0}}
	l := &mockLoader{onLoad: func(req pgbulk.LoadRequest) {
		if req.Table == "matches" {
			close(stop)
		}
	}}
	svc := newTestBatch(nil, conn, l).WithStop(stop)

	cfg := validConfig(t)
	cfg.Loads = []pgbulk.TableLoad{
		{Table: "matches", File: "m.csv"},
		{Table: "players", File: "p.csv"},
	}
	report, err := svc.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.False(t, report.Results[0].Failed(), "the load in flight completes")
	assert.True(t, report.Cancelled)
	assert.Len(t, report.Counts, 2)
	assert.ErrorIs(t, report.Err(), pgbulk.ErrLoadFailed)
}

func TestRun_WithStopDoesNotShareState(t *testing.T) {
	stop := make(chan struct{})
	close(stop)
	base := newTestBatch(nil, &mockLoadConn{}, &mockLoader{})
	stopped := base.WithStop(stop)

	assert.True(t, stopped.stopRequested())
	assert.False(t, base.stopRequested())
}

func TestRun_ProvisionerRunsFirst(t *testing.T) {
	prov := &stubProvisioner{}
	l := &mockLoader{}
	svc := newTestBatch(prov, &mockLoadConn{}, l)

	_, err := svc.Run(context.Background(), validConfig(t))
	require.NoError(t, err)
	assert.Equal(t, 1, prov.calls)
	assert.Len(t, l.requests, 4)
}

func TestRun_ProvisionerFailureAborts(t *testing.T) {
	prov := &stubProvisioner{err: pgbulk.ErrApprovalDenied}
	l := &mockLoader{}
	svc := newTestBatch(prov, &mockLoadConn{}, l)

	report, err := svc.Run(context.Background(), validConfig(t))
	require.ErrorIs(t, err, pgbulk.ErrApprovalDenied)
	assert.Nil(t, report)
	assert.Empty(t, l.requests)
}

func TestRun_ConnectionFailure(t *testing.T) {
	svc := newTestBatch(nil, nil, &mockLoader{})
	svc.connect = func(_ context.Context, _ *pgbulk.ConnectionConfig, _ string) (pgbulk.LoadConn, func(), error) {
		return nil, nil, pgbulk.ErrConnectionFailed
	}

	_, err := svc.Run(context.Background(), validConfig(t))
	require.ErrorIs(t, err, pgbulk.ErrConnectionFailed)
	assert.Equal(t, pgbulk.ExitConnectionError, pgbulk.ExitCodeForError(err))
}

func TestRun_LoadTimeoutPassedThrough(t *testing.T) {
	l := &mockLoader{}
	svc := newTestBatch(nil, &mockLoadConn{}, l)

	cfg := validConfig(t)
	cfg.LoadTimeout = 2 * time.Minute
	cfg.KeepNulls = true
	cfg.Loads = []pgbulk.TableLoad{{Table: "matches", File: "m.csv"}}
	_, err := svc.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, l.requests[0].Timeout)
	assert.True(t, l.requests[0].KeepNulls)
}

func TestLogObserver(t *testing.T) {
	lg := &mockLogger{}
	obs := MultiObserver{NewLogObserver(lg)}

	obs.LoadStarted(0, 2, pgbulk.TableLoad{Table: "matches", File: "/data/matches.csv"})
	obs.LoadFinished(0, 2, pgbulk.LoadResult{Table: "matches", Status: pgbulk.LoadStatusLoaded, RowsCopied: 12})
	r := failedResult(pgbulk.ErrorKindFormat, "invalid input syntax for type integer")
	r.Table = "players"
	obs.LoadFinished(1, 2, r)

	require.Len(t, lg.infos, 1)
	assert.Contains(t, lg.infos[0], "[1/2] ✓ matches: 12 rows")
	require.Len(t, lg.errs, 1)
	assert.Contains(t, lg.errs[0], "[2/2] ✗ players: format: invalid input syntax")
}
