package db

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// GranularConnFlags holds the libpq-style connection flags (-h, -p, -U, -d).
//
// Password is deliberately absent; use $PGPASSWORD, .pgpass, a connection
// string, or the -W prompt.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server-addressing flag was given.
// Database is excluded: it may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects and parameterises cloud IAM authentication.
// Secrets never come from flags; AZURE_CLIENT_SECRET is read from the environment.
type CloudFlags struct {
	AuthMethod     string
	AzureTenantID  string
	AzureClientID  string
	AWSRegion      string
	GoogleInstance string
}

// IsEmpty reports whether no cloud flag was given.
func (c *CloudFlags) IsEmpty() bool {
	return c == nil || (c.AuthMethod == "" && c.AzureTenantID == "" && c.AzureClientID == "" &&
		c.AWSRegion == "" && c.GoogleInstance == "")
}

// EnvVars captures the environment consulted during resolution.
// See https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	PGBULK_CONNECTION_STRING string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
	AWS_REGION          string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	return &EnvVars{
		PGHOST:                   os.Getenv("PGHOST"),
		PGPORT:                   os.Getenv("PGPORT"),
		PGUSER:                   os.Getenv("PGUSER"),
		PGPASSWORD:               os.Getenv("PGPASSWORD"),
		PGDATABASE:               os.Getenv("PGDATABASE"),
		PGSSLMODE:                os.Getenv("PGSSLMODE"),
		DATABASE_URL:             os.Getenv("DATABASE_URL"),
		PGBULK_CONNECTION_STRING: os.Getenv("PGBULK_CONNECTION_STRING"),
		AZURE_TENANT_ID:          os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:          os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:      os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:               region,
	}
}

// HasAzureCredentials returns true if Azure Entra ID environment variables are set.
func (e *EnvVars) HasAzureCredentials() bool {
	return e.AZURE_TENANT_ID != "" || e.AZURE_CLIENT_ID != ""
}

// ResolveConnectionParams resolves the server connection and the maintenance database.
//
// Precedence:
//  1. --connection flag
//  2. $PGBULK_CONNECTION_STRING, then $DATABASE_URL (only when no granular flags are set)
//  3. granular flags > PG* env vars > pgbulk.yaml connection block > defaults
//
// The database named in a connection string is the maintenance database; the
// load target comes from -d, $PGDATABASE, or pgbulk.yaml.
//
// Authentication: an explicit --auth-method (or auth_method in pgbulk.yaml) wins.
// Otherwise Azure Entra ID is selected when Azure tenant/client ids are present.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*pgbulk.ConnectionConfig, string, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, "", fmt.Errorf(
			"%w: cannot specify both --connection and granular flags (-h, -p, -U)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/postgres\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d mydb\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser",
			pgbulk.ErrInvalidConfig,
		)
	}

	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	var cfg *pgbulk.ConnectionConfig
	var maintenanceDB string
	var err error

	switch {
	case connStringFlag != "":
		cfg, maintenanceDB, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.PGBULK_CONNECTION_STRING != "":
		cfg, maintenanceDB, err = resolveFromConnectionString(envVars.PGBULK_CONNECTION_STRING, envVars)
	case granularFlags.IsEmpty() && envVars.DATABASE_URL != "":
		cfg, maintenanceDB, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	default:
		cfg, maintenanceDB, err = resolveFromGranularParams(granularFlags, envVars, pc)
	}
	if err != nil {
		return nil, "", err
	}

	applyTLSFiles(cfg, pc)

	if err := applyCloudAuth(cfg, cloudFlags, envVars, pc); err != nil {
		return nil, "", err
	}

	return cfg, maintenanceDB, nil
}

// applyTLSFiles carries client certificate paths from pgbulk.yaml unless the
// connection string already set them.
func applyTLSFiles(cfg *pgbulk.ConnectionConfig, pc config.ConnectionConfig) {
	for key, value := range map[string]string{
		"sslcert":     pc.SSLCert,
		"sslkey":      pc.SSLKey,
		"sslrootcert": pc.SSLRootCert,
	} {
		if value == "" {
			continue
		}
		if _, set := cfg.AdditionalParams[key]; !set {
			cfg.AdditionalParams[key] = value
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func applyCloudAuth(cfg *pgbulk.ConnectionConfig, flags *CloudFlags, env *EnvVars, pc config.ConnectionConfig) error {
	tenantID := firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
	clientID := firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)

	methodName := firstNonEmpty(flags.AuthMethod, pc.AuthMethod)
	method, err := pgbulk.ParseAuthMethod(methodName)
	if err != nil {
		return err
	}
	if methodName == "" && (tenantID != "" || clientID != "") {
		method = pgbulk.AuthMethodAzureEntraID
	}

	cfg.AuthMethod = method
	switch method {
	case pgbulk.AuthMethodAzureEntraID:
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case pgbulk.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
		if cfg.SSLMode == "" || cfg.SSLMode == "prefer" || cfg.SSLMode == "disable" {
			// RDS rejects IAM tokens over plaintext.
			cfg.SSLMode = "require"
		}
	case pgbulk.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	}
	return nil
}

// resolveFromConnectionString parses connStr; its database becomes the maintenance database.
// $PGSSLMODE applies when the string does not set sslmode itself.
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*pgbulk.ConnectionConfig, string, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid connection string: %w", pgbulk.ErrInvalidConfig, err)
	}

	if envVars.PGSSLMODE != "" && !strings.Contains(strings.ToLower(connStr), "sslmode") &&
		!strings.Contains(strings.ToLower(connStr), "ssl mode") {
		cfg.SSLMode = envVars.PGSSLMODE
	}

	maintenanceDB := firstNonEmpty(cfg.Database, pgbulk.DefaultManagementDB)
	return cfg, maintenanceDB, nil
}

// resolveFromGranularParams applies flag > environment > pgbulk.yaml > default per parameter.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	pc config.ConnectionConfig,
) (*pgbulk.ConnectionConfig, string, error) {
	cfg := &pgbulk.ConnectionConfig{
		AuthMethod:       pgbulk.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, "localhost")

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, "", fmt.Errorf("%w: invalid $PGPORT value '%s': must be an integer", pgbulk.ErrInvalidConfig, envVars.PGPORT)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = pgbulk.DefaultPort
	}

	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = envVars.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, "prefer")

	maintenanceDB := firstNonEmpty(pc.ManagementDatabase, pgbulk.DefaultManagementDB)
	return cfg, maintenanceDB, nil
}

// ResolveTargetDatabase picks the load target: -d flag > $PGDATABASE > pgbulk.yaml.
// For connection strings without -d, the string's own database is the target.
func ResolveTargetDatabase(flagDB string, envVars *EnvVars, projectConfig *config.ProjectConfig, cfg *pgbulk.ConnectionConfig) string {
	var yamlDB string
	if projectConfig != nil {
		yamlDB = projectConfig.Connection.Database
	}
	var envDB string
	if envVars != nil {
		envDB = envVars.PGDATABASE
	}
	var cfgDB string
	if cfg != nil {
		cfgDB = cfg.Database
	}
	return firstNonEmpty(flagDB, envDB, yamlDB, cfgDB)
}
