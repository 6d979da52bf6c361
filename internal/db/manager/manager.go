package manager

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

const (
	queryDatabaseExists       = "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	queryTerminateConnections = `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`
)

// Manager implements pgbulk.DatabaseManager. It holds no state.
type Manager struct{}

// New creates a new DatabaseManager instance.
func New() pgbulk.DatabaseManager {
	return &Manager{}
}

func (m *Manager) Exists(ctx context.Context, conn pgbulk.DBConnection, dbName string) (bool, error) {
	var exists bool
	if err := conn.QueryRow(ctx, queryDatabaseExists, dbName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	return exists, nil
}

// Create creates dbName with UTF-8 encoding, since every source file is read as UTF-8.
// template0 is used so the encoding may differ from template1.
func (m *Manager) Create(ctx context.Context, conn pgbulk.DBConnection, dbName string) error {
	query := fmt.Sprintf("CREATE DATABASE %s WITH ENCODING 'UTF8' TEMPLATE template0", pgx.Identifier{dbName}.Sanitize())
	if err := execDedicated(ctx, conn, query); err != nil {
		return fmt.Errorf("failed to create database %q: %w", dbName, err)
	}
	return nil
}

func (m *Manager) Drop(ctx context.Context, conn pgbulk.DBConnection, dbName string) error {
	query := fmt.Sprintf("DROP DATABASE IF EXISTS %s", pgx.Identifier{dbName}.Sanitize())
	if err := execDedicated(ctx, conn, query); err != nil {
		return fmt.Errorf("failed to drop database %q: %w", dbName, err)
	}
	return nil
}

func (m *Manager) TerminateConnections(ctx context.Context, conn pgbulk.DBConnection, dbName string) error {
	if _, err := conn.Exec(ctx, queryTerminateConnections, dbName); err != nil {
		return fmt.Errorf("failed to terminate connections to database %q: %w", dbName, err)
	}
	return nil
}

// execDedicated runs a statement that must not be wrapped in a transaction.
func execDedicated(ctx context.Context, conn pgbulk.DBConnection, query string) error {
	pooled, err := conn.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer pooled.Release()

	_, err = pooled.Exec(ctx, query)
	return err
}

var _ pgbulk.DatabaseManager = (*Manager)(nil)
