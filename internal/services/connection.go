package services

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgbulk/internal/db"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// ConnectorFactory builds a Connector for a resolved connection; db.NewConnector satisfies it.
type ConnectorFactory func(*pgbulk.ConnectionConfig, pgbulk.Logger) (pgbulk.Connector, error)

// applicationName is reported in pg_stat_activity.
const applicationName = "pgbulk"

// dbConnFunc opens a DBConnection to dbName and returns its cleanup.
type dbConnFunc func(ctx context.Context, connConfig *pgbulk.ConnectionConfig, dbName string) (pgbulk.DBConnection, func(), error)

// connectionConfigFor parses the run's connection string and applies the
// authentication settings carried by the LoadConfig.
func connectionConfigFor(cfg pgbulk.LoadConfig) (*pgbulk.ConnectionConfig, error) {
	connConfig, err := db.ParseConnectionString(cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse connection string: %w", pgbulk.ErrInvalidConfig, err)
	}

	if connConfig.AppName == "" {
		connConfig.AppName = applicationName
	}
	connConfig.AuthMethod = cfg.AuthMethod
	connConfig.AzureTenantID = cfg.AzureTenantID
	connConfig.AzureClientID = cfg.AzureClientID
	connConfig.AzureClientSecret = cfg.AzureClientSecret
	connConfig.AWSRegion = cfg.AWSRegion
	connConfig.GoogleInstance = cfg.GoogleInstance

	return connConfig, nil
}

// dial connects to dbName. The cleanup closes the pool and, for connectors
// that hold resources (the Cloud SQL dialer), the connector as well.
func dial(ctx context.Context, factory ConnectorFactory, logger pgbulk.Logger, connConfig *pgbulk.ConnectionConfig, dbName string) (*pgxpool.Pool, func(), error) {
	target := *connConfig
	target.Database = dbName

	connector, err := factory(&target, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connector: %w", err)
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		if closer, ok := connector.(io.Closer); ok {
			closer.Close() //nolint:errcheck
		}
	}
	return pool, cleanup, nil
}

func dbConnector(factory ConnectorFactory, logger pgbulk.Logger) dbConnFunc {
	return func(ctx context.Context, connConfig *pgbulk.ConnectionConfig, dbName string) (pgbulk.DBConnection, func(), error) {
		pool, cleanup, err := dial(ctx, factory, logger, connConfig, dbName)
		if err != nil {
			return nil, nil, err
		}
		return db.NewPoolAdapter(pool), cleanup, nil
	}
}

// loadConnFunc opens the single session a batch runs its loads on.
type loadConnFunc func(ctx context.Context, connConfig *pgbulk.ConnectionConfig, dbName string) (pgbulk.LoadConn, func(), error)

func loadConnector(factory ConnectorFactory, logger pgbulk.Logger) loadConnFunc {
	return func(ctx context.Context, connConfig *pgbulk.ConnectionConfig, dbName string) (pgbulk.LoadConn, func(), error) {
		pool, cleanup, err := dial(ctx, factory, logger, connConfig, dbName)
		if err != nil {
			return nil, nil, err
		}

		conn, err := db.AcquirePinnedLoadConn(ctx, pool)
		if err != nil {
			cleanup()
			return nil, nil, err
		}

		return conn, func() {
			conn.Release()
			cleanup()
		}, nil
	}
}
