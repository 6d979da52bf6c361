package pgbulk

import (
	"context"
)

// DatabaseManager defines the interface for database management operations.
// Implementations are NOT safe for concurrent use.
type DatabaseManager interface {
	// Exists checks if a database exists.
	Exists(ctx context.Context, conn DBConnection, dbName string) (bool, error)

	// Create creates a new database.
	Create(ctx context.Context, conn DBConnection, dbName string) error

	// Drop drops the specified database.
	Drop(ctx context.Context, conn DBConnection, dbName string) error

	// TerminateConnections terminates all other sessions on the specified database.
	TerminateConnections(ctx context.Context, conn DBConnection, dbName string) error
}
