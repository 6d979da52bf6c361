package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/pgbulk/internal/files/filesystem"
	"github.com/vvka-141/pgbulk/internal/loader"
	"github.com/vvka-141/pgbulk/internal/logging"
	"github.com/vvka-141/pgbulk/internal/schema"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// countTimeout bounds the final row counts when the run context is already done.
const countTimeout = 10 * time.Second

// LoaderFactory builds the loader for one run.
type LoaderFactory func(catalog pgbulk.Catalog, fs filesystem.FileSystemProvider, logger pgbulk.Logger) pgbulk.Loader

func defaultLoaderFactory(catalog pgbulk.Catalog, fs filesystem.FileSystemProvider, logger pgbulk.Logger) pgbulk.Loader {
	return loader.New(catalog, fs, logger)
}

// BatchService implements pgbulk.BatchRunner. Loads run one after another on
// a single session; a failed load never stops the batch.
// Not safe for concurrent Run calls on the same instance.
type BatchService struct {
	provisioner pgbulk.Provisioner
	fs          filesystem.FileSystemProvider
	logger      pgbulk.Logger
	observer    pgbulk.LoadObserver
	stops       []<-chan struct{}
	newLoader   LoaderFactory
	connect     loadConnFunc
	newRunID    func() string
}

// NewBatchService panics on nil dependencies. provisioner may be nil when the
// target is known to be ready.
func NewBatchService(
	connectorFactory ConnectorFactory,
	provisioner pgbulk.Provisioner,
	fs filesystem.FileSystemProvider,
	logger pgbulk.Logger,
) *BatchService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if fs == nil {
		panic("fs cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &BatchService{
		provisioner: provisioner,
		fs:          fs,
		logger:      logger,
		newLoader:   defaultLoaderFactory,
		connect:     loadConnector(connectorFactory, logger),
		newRunID:    uuid.NewString,
	}
}

var _ pgbulk.BatchRunner = (*BatchService)(nil)

// WithObserver returns a copy of s that reports progress to observer.
func (s *BatchService) WithObserver(observer pgbulk.LoadObserver) *BatchService {
	clone := *s
	clone.observer = observer
	return &clone
}

// WithStop returns a copy of s that stops between loads once stop is closed.
// Unlike cancelling the context, the load in flight runs to completion.
func (s *BatchService) WithStop(stop <-chan struct{}) *BatchService {
	clone := *s
	clone.stops = append(append([]<-chan struct{}(nil), s.stops...), stop)
	return &clone
}

func (s *BatchService) stopRequested() bool {
	for _, stop := range s.stops {
		select {
		case <-stop:
			return true
		default:
		}
	}
	return false
}

// Run validates cfg, prepares the database, then loads every pair in order.
// The error return covers setup only; per-load failures are in the report.
// A cancelled context aborts the load in flight; a closed stop channel lets it
// finish. Either way the batch stops before the next load and marks the report.
func (s *BatchService) Run(ctx context.Context, cfg pgbulk.LoadConfig) (*pgbulk.BatchReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	report := &pgbulk.BatchReport{
		RunID:     s.newRunID(),
		Database:  cfg.DatabaseName,
		StartedAt: time.Now(),
	}
	logger := logging.WithRunID(s.logger, report.RunID)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if s.provisioner != nil {
		if err := s.provisioner.Prepare(ctx, cfg); err != nil {
			return nil, err
		}
	}

	connConfig, err := connectionConfigFor(cfg)
	if err != nil {
		return nil, err
	}

	logger.Verbose("Connecting to target database '%s'", cfg.DatabaseName)
	conn, cleanup, err := s.connect(ctx, connConfig, cfg.DatabaseName)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	loads := cfg.Loads
	if len(loads) == 0 {
		loads = schema.DefaultLoads(cfg.Catalog)
	}

	l := s.newLoader(cfg.Catalog, s.fs, logger)
	for i, pair := range loads {
		if ctx.Err() != nil {
			report.Cancelled = true
			logger.Info("Run stopped before %s: %v", pair.Table, ctx.Err())
			break
		}
		if s.stopRequested() {
			report.Cancelled = true
			logger.Info("Run stopped before %s: interrupted", pair.Table)
			break
		}

		if s.observer != nil {
			s.observer.LoadStarted(i, len(loads), pair)
		}

		result := l.Load(ctx, conn, pgbulk.LoadRequest{
			Table:     pair.Table,
			Path:      cfg.SourcePath(pair.File),
			Delimiter: cfg.DelimiterFor(pair),
			KeepNulls: cfg.KeepNulls,
			Timeout:   cfg.LoadTimeout,
		})
		report.Results = append(report.Results, result)

		if result.Failed() {
			logger.Verbose("Load %d/%d %s failed: %s", i+1, len(loads), pair.Table, result.Diagnostic.Error())
		} else {
			logger.Verbose("Load %d/%d %s: %d rows copied", i+1, len(loads), pair.Table, result.RowsCopied)
		}

		if s.observer != nil {
			s.observer.LoadFinished(i, len(loads), result)
		}
	}
	if ctx.Err() != nil && len(report.Results) < len(loads) {
		report.Cancelled = true
	}

	s.countTables(ctx, conn, loads, report)
	report.FinishedAt = time.Now()
	return report, nil
}

// countTables records the final row count of every distinct table, in the
// order tables first appear in the batch.
func (s *BatchService) countTables(ctx context.Context, conn pgbulk.LoadConn, loads []pgbulk.TableLoad, report *pgbulk.BatchReport) {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), countTimeout)
		defer cancel()
	}

	seen := make(map[string]bool, len(loads))
	for _, pair := range loads {
		if seen[pair.Table] {
			continue
		}
		seen[pair.Table] = true

		tc := pgbulk.TableCount{Table: pair.Table}
		n, err := loader.CountRows(ctx, conn, pair.Table)
		if err != nil {
			tc.Error = err.Error()
		} else {
			tc.Rows = n
			report.TotalRows += n
		}
		report.Counts = append(report.Counts, tc)
	}
}
