package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = pgbulk.ErrConfigNotFound

type ConnectionConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Username           string `yaml:"username"`
	Database           string `yaml:"database"`
	ManagementDatabase string `yaml:"management_database,omitempty"`
	SSLMode            string `yaml:"sslmode"`
	SSLCert            string `yaml:"sslcert,omitempty"`
	SSLKey             string `yaml:"sslkey,omitempty"`
	SSLRootCert        string `yaml:"sslrootcert,omitempty"`
	AuthMethod         string `yaml:"auth_method,omitempty"`
	AzureTenantID      string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID      string `yaml:"azure_client_id,omitempty"`
	AWSRegion          string `yaml:"aws_region,omitempty"`
	GoogleInstance     string `yaml:"google_instance,omitempty"`
}

// ColumnConfig declares one column of a custom table.
type ColumnConfig struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Precision int    `yaml:"precision,omitempty"`
	Scale     int    `yaml:"scale,omitempty"`
	NotNull   bool   `yaml:"not_null,omitempty"`
}

// TableConfig declares a custom table. Column order is the file's field order.
type TableConfig struct {
	Name       string         `yaml:"name"`
	Columns    []ColumnConfig `yaml:"columns"`
	PrimaryKey []string       `yaml:"primary_key,omitempty"`
}

// LoadEntry is one (table, file) pair of the ordered load list.
type LoadEntry struct {
	Table     string `yaml:"table"`
	File      string `yaml:"file,omitempty"`
	Delimiter string `yaml:"delimiter,omitempty"`
}

type ProjectConfig struct {
	Connection     ConnectionConfig `yaml:"connection"`
	Schema         string           `yaml:"schema,omitempty"`
	Tables         []TableConfig    `yaml:"tables,omitempty"`
	DataDir        string           `yaml:"data_dir,omitempty"`
	Delimiter      string           `yaml:"delimiter,omitempty"`
	LineTerminator string           `yaml:"line_terminator,omitempty"`
	KeepNulls      *bool            `yaml:"keep_nulls,omitempty"`
	CreateTables   bool             `yaml:"create_tables,omitempty"`
	Timeout        string           `yaml:"timeout,omitempty"`
	LoadTimeout    string           `yaml:"load_timeout,omitempty"`
	Loads          []LoadEntry      `yaml:"loads,omitempty"`
}

const ConfigFileName = "pgbulk.yaml"

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrConfigNotFound, sourcePath)
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	return &cfg, nil
}

// Validate checks values that can be checked without a catalog or a server.
func (c *ProjectConfig) Validate() error {
	var errs []error

	if c.Schema != "" && len(c.Tables) > 0 {
		errs = append(errs, fmt.Errorf("schema %q and tables are mutually exclusive: %w", c.Schema, pgbulk.ErrInvalidConfig))
	}
	if c.Delimiter != "" {
		if _, err := NormalizeDelimiter(c.Delimiter); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := NormalizeLineTerminator(c.LineTerminator); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.LoadTimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	for i, l := range c.Loads {
		if l.Table == "" {
			errs = append(errs, fmt.Errorf("loads[%d]: table is required: %w", i, pgbulk.ErrInvalidConfig))
		}
		if l.Delimiter != "" {
			if _, err := NormalizeDelimiter(l.Delimiter); err != nil {
				errs = append(errs, fmt.Errorf("loads[%d]: %w", i, err))
			}
		}
	}

	return errors.Join(errs...)
}

// KeepNullsOrDefault returns keep_nulls, which defaults to true.
func (c *ProjectConfig) KeepNullsOrDefault() bool {
	if c.KeepNulls == nil {
		return true
	}
	return *c.KeepNulls
}

// TimeoutDuration parses timeout; empty yields zero.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("timeout", c.Timeout)
}

// LoadTimeoutDuration parses load_timeout; empty yields zero.
func (c *ProjectConfig) LoadTimeoutDuration() (time.Duration, error) {
	return parseDuration("load_timeout", c.LoadTimeout)
}

// ResolveDataDir returns the data directory, relative paths being anchored at projectPath.
func (c *ProjectConfig) ResolveDataDir(projectPath string) string {
	dir := c.DataDir
	if dir == "" {
		return projectPath
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(projectPath, dir)
}

// TableLoads converts the configured loads, normalizing delimiters.
// Entries without a file default to <table>.csv.
func (c *ProjectConfig) TableLoads() ([]pgbulk.TableLoad, error) {
	loads := make([]pgbulk.TableLoad, 0, len(c.Loads))
	for i, l := range c.Loads {
		file := l.File
		if file == "" {
			file = l.Table + pgbulk.DefaultFileExtension
		}
		delim := ""
		if l.Delimiter != "" {
			d, err := NormalizeDelimiter(l.Delimiter)
			if err != nil {
				return nil, fmt.Errorf("loads[%d]: %w", i, err)
			}
			delim = d
		}
		loads = append(loads, pgbulk.TableLoad{Table: l.Table, File: file, Delimiter: delim})
	}
	return loads, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %v: %w", field, value, err, pgbulk.ErrInvalidConfig)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s cannot be negative: %w", field, pgbulk.ErrInvalidConfig)
	}
	return d, nil
}

var delimiterAliases = map[string]string{
	"comma":     ",",
	"pipe":      "|",
	"semicolon": ";",
	"tab":       "\t",
	`\t`:        "\t",
}

// NormalizeDelimiter resolves named aliases (comma, pipe, semicolon, tab)
// and checks the result is a supported delimiter.
func NormalizeDelimiter(d string) (string, error) {
	if alias, ok := delimiterAliases[strings.ToLower(d)]; ok {
		d = alias
	}
	if !pgbulk.IsSupportedDelimiter(d) {
		return "", fmt.Errorf("unsupported delimiter %q (use one of , | ; tab): %w", d, pgbulk.ErrInvalidConfig)
	}
	return d, nil
}

// NormalizeLineTerminator accepts LF and CRLF spellings. Both are handled
// natively by CSV COPY, so the normalized value is informational only.
func NormalizeLineTerminator(t string) (string, error) {
	switch strings.ToLower(t) {
	case "", "lf", `\n`, "\n", "0x0a":
		return "\n", nil
	case "crlf", `\r\n`, "\r\n", "0x0d0a":
		return "\r\n", nil
	default:
		return "", fmt.Errorf("unsupported line terminator %q (use lf or crlf): %w", t, pgbulk.ErrInvalidConfig)
	}
}
