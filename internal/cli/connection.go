package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/internal/db"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// connectionFlags holds the common connection-related flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	password       bool
	authMethod     string
	azureTenantID  string
	azureClientID  string
	awsRegion      string
	googleInstance string
}

// resolvedConnection holds the resolved connection configuration.
type resolvedConnection struct {
	ConnConfig    *pgbulk.ConnectionConfig
	MaintenanceDB string
	TargetDB      string
	ConnStr       string
	// Prompted is set when the password was typed at the -W prompt.
	Prompted bool
}

// registerConnectionFlags binds the connection and cloud authentication flags to cmd.
func registerConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	cmd.Flags().StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI or ADO.NET format).\n"+
			"The database in the connection string is used for CREATE/DROP DATABASE.\n"+
			"Mutually exclusive with granular flags (--host, --port, --username).\n"+
			"Alternative: Use PGBULK_CONNECTION_STRING or DATABASE_URL environment variable.\n"+
			"Example: postgresql://loader@localhost:5432/postgres")

	cmd.Flags().StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > pgbulk.yaml > localhost")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > pgbulk.yaml > 5432")
	cmd.Flags().StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	cmd.Flags().StringVarP(&f.database, "database", "d", "",
		"Target database name (default: $PGDATABASE, pgbulk.yaml, or the connection string)")
	cmd.Flags().StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")
	cmd.Flags().BoolVarP(&f.password, "password", "W", false,
		"Prompt for the password before connecting")

	cmd.Flags().StringVar(&f.authMethod, "auth-method", "",
		"Authentication: standard|aws|google|azure (default: standard,\n"+
			"or azure when Azure tenant/client ids are present)")
	cmd.Flags().StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	cmd.Flags().StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
	cmd.Flags().StringVar(&f.awsRegion, "aws-region", "",
		"AWS region for RDS IAM tokens (overrides $AWS_REGION)")
	cmd.Flags().StringVar(&f.googleInstance, "google-instance", "",
		"Cloud SQL instance connection name (project:region:instance)")

	cmd.RegisterFlagCompletionFunc("sslmode", completeSSLModes)        //nolint:errcheck
	cmd.RegisterFlagCompletionFunc("auth-method", completeAuthMethods) //nolint:errcheck
}

// resolveConnectionFromFlags resolves the server, target database and
// maintenance database from flags, environment and pgbulk.yaml.
func resolveConnectionFromFlags(flags connectionFlags, projectCfg *config.ProjectConfig) (*resolvedConnection, error) {
	granular := &db.GranularConnFlags{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}
	cloud := &db.CloudFlags{
		AuthMethod:     flags.authMethod,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
		AWSRegion:      flags.awsRegion,
		GoogleInstance: flags.googleInstance,
	}
	env := db.LoadFromEnvironment()

	connConfig, maintenanceDB, err := db.ResolveConnectionParams(flags.connection, granular, cloud, env, projectCfg)
	if err != nil {
		return nil, err
	}

	targetDB := db.ResolveTargetDatabase(flags.database, env, projectCfg, connConfig)
	if targetDB == "" {
		return nil, fmt.Errorf("%w: database name is required\n"+
			"Provide via:\n"+
			"  1. --database/-d flag: pgbulk load ./cricket -d cricket\n"+
			"  2. pgbulk.yaml: connection.database\n"+
			"  3. Environment variable: export PGDATABASE=cricket",
			pgbulk.ErrInvalidConfig)
	}

	resolved := &resolvedConnection{
		ConnConfig:    connConfig,
		MaintenanceDB: maintenanceDB,
		TargetDB:      targetDB,
	}

	if flags.password {
		pw, err := promptPassword(connConfig.Username)
		if err != nil {
			return nil, err
		}
		connConfig.Password = pw
		resolved.Prompted = pw != ""
	}

	resolved.ConnStr = db.BuildConnectionString(connConfig)
	return resolved, nil
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(username string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: -W requires an interactive terminal; use $PGPASSWORD or .pgpass", pgbulk.ErrInvalidConfig)
	}
	fmt.Fprintf(os.Stderr, "Password for user %s: ", username)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
func logConnectionVerbose(logger pgbulk.Logger, rc *resolvedConnection) {
	cfg := rc.ConnConfig
	logger.Verbose("Connection resolved: %s", db.RedactConnectionString(cfg))
	logger.Verbose("  Target Database: %s", rc.TargetDB)
	logger.Verbose("  Maintenance Database: %s", rc.MaintenanceDB)
	logger.Verbose("  SSL Mode: %s", cfg.SSLMode)
	logger.Verbose("  Auth Method: %s", cfg.AuthMethod)
	if cfg.GoogleInstance != "" {
		logger.Verbose("  Cloud SQL Instance: %s", cfg.GoogleInstance)
	}
}

// applyConnection copies the resolved connection into cfg.
func applyConnection(cfg *pgbulk.LoadConfig, rc *resolvedConnection) {
	cfg.DatabaseName = rc.TargetDB
	cfg.MaintenanceDatabase = rc.MaintenanceDB
	cfg.ConnectionString = rc.ConnStr
	cfg.AuthMethod = rc.ConnConfig.AuthMethod
	cfg.AzureTenantID = rc.ConnConfig.AzureTenantID
	cfg.AzureClientID = rc.ConnConfig.AzureClientID
	cfg.AzureClientSecret = rc.ConnConfig.AzureClientSecret
	cfg.AWSRegion = rc.ConnConfig.AWSRegion
	cfg.GoogleInstance = rc.ConnConfig.GoogleInstance
}
