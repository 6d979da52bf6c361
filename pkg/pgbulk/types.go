package pgbulk

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// TableLoad pairs a destination table with its source file.
type TableLoad struct {
	// Table is the destination table; it must be present in the schema catalog.
	Table string

	// File is the source path. Relative paths are resolved against LoadConfig.DataDir.
	File string

	// Delimiter overrides the batch-wide delimiter when non-empty.
	Delimiter string
}

// LoadConfig contains all parameters needed for a batch load operation.
type LoadConfig struct {
	// ProjectPath is the directory holding pgbulk.yaml and, by default, the data files
	ProjectPath string

	// DataDir is the base directory source files are resolved against
	DataDir string

	// DatabaseName is the target database name
	DatabaseName string

	// MaintenanceDatabase is the database to connect to for server-level operations
	// (CREATE DATABASE, DROP DATABASE). Typically "postgres".
	MaintenanceDatabase string

	// ConnectionString is the PostgreSQL connection string (URI or ADO.NET format)
	// After CLI resolution, this contains the TARGET database connection
	ConnectionString string

	// Reset enables the destructive drop/recreate workflow before loading
	Reset bool

	// Force bypasses interactive approval when used with Reset
	Force bool

	// CreateTables applies CREATE TABLE IF NOT EXISTS for the catalog before loading
	CreateTables bool

	// Catalog is the allow-list of destination tables
	Catalog Catalog

	// Loads is the ordered list of (table, file) pairs to process
	Loads []TableLoad

	// Delimiter is the default field separator for every load
	Delimiter string

	// KeepNulls loads empty fields as NULL instead of empty strings
	KeepNulls bool

	// Timeout is the global timeout for the entire run
	Timeout time.Duration

	// LoadTimeout bounds a single table load; zero means no per-load limit
	LoadTimeout time.Duration

	// Verbose enables detailed logging
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is used when AuthMethod is AuthMethodAWSIAM
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance (project:region:instance) for AuthMethodGoogleIAM
	GoogleInstance string
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.DatabaseName == "" {
		errs = append(errs, fmt.Errorf("DatabaseName is required: %w", ErrInvalidConfig))
	}

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if c.Catalog == nil {
		errs = append(errs, fmt.Errorf("Catalog is required: %w", ErrInvalidConfig))
	}

	if c.Force && !c.Reset {
		errs = append(errs, fmt.Errorf("force flag requires reset to be enabled: %w", ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	if c.LoadTimeout < 0 {
		errs = append(errs, fmt.Errorf("load timeout cannot be negative: %w", ErrInvalidConfig))
	}

	if c.Delimiter != "" && !IsSupportedDelimiter(c.Delimiter) {
		errs = append(errs, fmt.Errorf("unsupported delimiter %q: %w", c.Delimiter, ErrInvalidConfig))
	}

	for i, l := range c.Loads {
		if l.Table == "" {
			errs = append(errs, fmt.Errorf("loads[%d]: table is required: %w", i, ErrInvalidConfig))
		}
		if l.File == "" {
			errs = append(errs, fmt.Errorf("loads[%d]: file is required: %w", i, ErrInvalidConfig))
		}
		if l.Delimiter != "" && !IsSupportedDelimiter(l.Delimiter) {
			errs = append(errs, fmt.Errorf("loads[%d]: unsupported delimiter %q: %w", i, l.Delimiter, ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}

// SourcePath resolves a load's file against DataDir, falling back to
// ProjectPath. Absolute paths are returned unchanged.
func (c *LoadConfig) SourcePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	base := c.DataDir
	if base == "" {
		base = c.ProjectPath
	}
	return filepath.Join(base, file)
}

// DelimiterFor returns the effective delimiter for a load entry.
func (c *LoadConfig) DelimiterFor(l TableLoad) string {
	switch {
	case l.Delimiter != "":
		return l.Delimiter
	case c.Delimiter != "":
		return c.Delimiter
	default:
		return DefaultDelimiter
	}
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AWS RDS IAM tokens
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps a CLI or config spelling to an AuthMethod.
// The empty string selects standard authentication.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam", "awsiam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id", "entra":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%w: unknown auth method %q (use standard, aws, google, or azure)", ErrInvalidConfig, s)
	}
}
