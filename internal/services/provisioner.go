package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/pgbulk/internal/schema"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// ProvisioningService implements pgbulk.Provisioner: it resets or creates the
// target database and applies the catalog DDL. Not safe for concurrent use.
type ProvisioningService struct {
	approver      pgbulk.Approver
	logger        pgbulk.Logger
	dbManager     pgbulk.DatabaseManager
	mgmtConnector dbConnFunc
	dbConnector   dbConnFunc
}

// NewProvisioningService panics on nil dependencies; these are wiring errors,
// not runtime conditions.
func NewProvisioningService(
	connectorFactory ConnectorFactory,
	approver pgbulk.Approver,
	logger pgbulk.Logger,
	dbManager pgbulk.DatabaseManager,
) *ProvisioningService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if dbManager == nil {
		panic("dbManager cannot be nil")
	}

	connect := dbConnector(connectorFactory, logger)
	return &ProvisioningService{
		approver:      approver,
		logger:        logger,
		dbManager:     dbManager,
		mgmtConnector: connect,
		dbConnector:   connect,
	}
}

var _ pgbulk.Provisioner = (*ProvisioningService)(nil)

// Prepare makes the target database ready for loading.
//
// With Reset the database is dropped (after approval) and recreated with every
// catalog table. Without Reset the database is created if missing; tables are
// created when the database is new or CreateTables is set, and existing tables
// are left untouched.
func (s *ProvisioningService) Prepare(ctx context.Context, cfg pgbulk.LoadConfig) error {
	connConfig, err := connectionConfigFor(cfg)
	if err != nil {
		return err
	}

	managementDB := cfg.MaintenanceDatabase
	if managementDB == "" {
		managementDB = pgbulk.DefaultManagementDB
	}

	var created bool
	if cfg.Reset {
		if err := validateResetTarget(cfg.DatabaseName, managementDB); err != nil {
			return err
		}
		if err := s.reset(ctx, connConfig, managementDB, cfg.DatabaseName); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		created = true
	} else {
		created, err = s.ensureDatabaseExists(ctx, connConfig, managementDB, cfg.DatabaseName)
		if err != nil {
			return fmt.Errorf("failed to ensure database exists: %w", err)
		}
	}

	if !created && !cfg.CreateTables {
		return nil
	}
	return s.applyDDL(ctx, connConfig, cfg.DatabaseName, cfg.Catalog, !created)
}

// validateResetTarget refuses databases that cannot or must not be dropped.
func validateResetTarget(targetDB, managementDB string) error {
	if strings.EqualFold(targetDB, managementDB) {
		return fmt.Errorf(
			"cannot reset database %q: it is the maintenance database used for CREATE/DROP DATABASE. "+
				"Load into a different target database: %w",
			targetDB, pgbulk.ErrInvalidConfig,
		)
	}
	if pgbulk.IsTemplateDatabase(targetDB) {
		return fmt.Errorf("cannot reset database %q: PostgreSQL template databases cannot be dropped: %w",
			targetDB, pgbulk.ErrInvalidConfig)
	}
	return nil
}

func (s *ProvisioningService) reset(ctx context.Context, connConfig *pgbulk.ConnectionConfig, managementDB, target string) error {
	s.logger.Verbose("Connecting to maintenance database '%s'", managementDB)
	mgmt, cleanup, err := s.mgmtConnector(ctx, connConfig, managementDB)
	if err != nil {
		return err
	}
	defer cleanup()

	exists, err := s.dbManager.Exists(ctx, mgmt, target)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if exists {
		s.logger.Verbose("Database '%s' exists. Requesting approval for reset.", target)
		approved, err := s.approver.RequestApproval(ctx, target)
		if err != nil {
			return fmt.Errorf("approval request failed: %w", err)
		}
		if !approved {
			return pgbulk.ErrApprovalDenied
		}

		s.logger.Verbose("Terminating all connections to database '%s'", target)
		if err := s.dbManager.TerminateConnections(ctx, mgmt, target); err != nil {
			return fmt.Errorf("failed to terminate connections: %w", err)
		}

		s.logger.Verbose("Dropping database '%s'", target)
		if err := s.dbManager.Drop(ctx, mgmt, target); err != nil {
			return fmt.Errorf("failed to drop database: %w", err)
		}
	}

	s.logger.Verbose("Creating database '%s'", target)
	if err := s.dbManager.Create(ctx, mgmt, target); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	s.logger.Info("✓ Database '%s' reset", target)
	return nil
}

// ensureDatabaseExists reports whether it had to create the database.
func (s *ProvisioningService) ensureDatabaseExists(ctx context.Context, connConfig *pgbulk.ConnectionConfig, managementDB, target string) (bool, error) {
	s.logger.Verbose("Connecting to maintenance database '%s' to check if '%s' exists", managementDB, target)
	mgmt, cleanup, err := s.mgmtConnector(ctx, connConfig, managementDB)
	if err != nil {
		return false, err
	}
	defer cleanup()

	exists, err := s.dbManager.Exists(ctx, mgmt, target)
	if err != nil {
		return false, fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		s.logger.Verbose("Database '%s' already exists", target)
		return false, nil
	}

	s.logger.Info("Database '%s' does not exist. Creating...", target)
	if err := s.dbManager.Create(ctx, mgmt, target); err != nil {
		return false, fmt.Errorf("failed to create database: %w", err)
	}
	return true, nil
}

// applyDDL creates every catalog table in the target, one statement per table.
func (s *ProvisioningService) applyDDL(ctx context.Context, connConfig *pgbulk.ConnectionConfig, target string, catalog pgbulk.Catalog, ifNotExists bool) error {
	conn, cleanup, err := s.dbConnector(ctx, connConfig, target)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, t := range catalog.Tables() {
		s.logger.Verbose("Creating table %s", t.Name)
		if _, err := conn.Exec(ctx, schema.CreateTableSQL(t, ifNotExists)); err != nil {
			return fmt.Errorf("failed to create table %q: %w", t.Name, err)
		}
	}

	s.logger.Info("✓ %d table(s) ready in '%s' (%s schema)", len(catalog.Tables()), target, catalog.Name())
	return nil
}
