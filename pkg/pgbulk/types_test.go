package pgbulk_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

type stubCatalog struct{}

func (stubCatalog) Name() string                        { return "stub" }
func (stubCatalog) Lookup(string) (pgbulk.Table, error) { return pgbulk.Table{}, nil }
func (stubCatalog) Tables() []pgbulk.Table              { return nil }

func validConfig() pgbulk.LoadConfig {
	return pgbulk.LoadConfig{
		DatabaseName:     "cricket",
		ConnectionString: "postgresql://localhost:5432/cricket",
		Catalog:          stubCatalog{},
		Loads:            []pgbulk.TableLoad{{Table: "players", File: "players.csv"}},
	}
}

func TestLoadConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *pgbulk.LoadConfig)
		wantError bool
	}{
		{"valid config", func(c *pgbulk.LoadConfig) {}, false},
		{"valid reset with force", func(c *pgbulk.LoadConfig) { c.Reset, c.Force = true, true }, false},
		{"missing database name", func(c *pgbulk.LoadConfig) { c.DatabaseName = "" }, true},
		{"missing connection string", func(c *pgbulk.LoadConfig) { c.ConnectionString = "" }, true},
		{"missing catalog", func(c *pgbulk.LoadConfig) { c.Catalog = nil }, true},
		{"force without reset", func(c *pgbulk.LoadConfig) { c.Force = true }, true},
		{"negative timeout", func(c *pgbulk.LoadConfig) { c.Timeout = -time.Second }, true},
		{"negative load timeout", func(c *pgbulk.LoadConfig) { c.LoadTimeout = -time.Second }, true},
		{"bad delimiter", func(c *pgbulk.LoadConfig) { c.Delimiter = "'" }, true},
		{"load without file", func(c *pgbulk.LoadConfig) { c.Loads[0].File = "" }, true},
		{"load without table", func(c *pgbulk.LoadConfig) { c.Loads[0].Table = "" }, true},
		{"load with bad delimiter", func(c *pgbulk.LoadConfig) { c.Loads[0].Delimiter = "ab" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, pgbulk.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadConfig_DelimiterFor(t *testing.T) {
	cfg := pgbulk.LoadConfig{}
	if got := cfg.DelimiterFor(pgbulk.TableLoad{}); got != "," {
		t.Errorf("default delimiter = %q, want \",\"", got)
	}
	cfg.Delimiter = "|"
	if got := cfg.DelimiterFor(pgbulk.TableLoad{}); got != "|" {
		t.Errorf("config delimiter = %q, want \"|\"", got)
	}
	if got := cfg.DelimiterFor(pgbulk.TableLoad{Delimiter: ";"}); got != ";" {
		t.Errorf("entry delimiter = %q, want \";\"", got)
	}
}

func TestAuthMethod_String(t *testing.T) {
	tests := []struct {
		method pgbulk.AuthMethod
		want   string
		valid  bool
	}{
		{pgbulk.AuthMethodStandard, "Standard", true},
		{pgbulk.AuthMethodAWSIAM, "AWS IAM", true},
		{pgbulk.AuthMethodGoogleIAM, "Google IAM", true},
		{pgbulk.AuthMethodAzureEntraID, "Azure Entra ID", true},
		{pgbulk.AuthMethod(99), "Unknown(99)", false},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.method.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := tt.method.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestColumn_SQLType(t *testing.T) {
	tests := []struct {
		col  pgbulk.Column
		want string
	}{
		{pgbulk.Column{Type: pgbulk.ColumnText}, "text"},
		{pgbulk.Column{Type: pgbulk.ColumnInteger}, "integer"},
		{pgbulk.Column{Type: pgbulk.ColumnDate}, "date"},
		{pgbulk.Column{Type: pgbulk.ColumnDecimal}, "numeric"},
		{pgbulk.Column{Type: pgbulk.ColumnDecimal, Precision: 5, Scale: 2}, "numeric(5,2)"},
	}
	for _, tt := range tests {
		if got := tt.col.SQLType(); got != tt.want {
			t.Errorf("SQLType(%+v) = %q, want %q", tt.col, got, tt.want)
		}
	}
}

func TestBatchReport_Err(t *testing.T) {
	r := &pgbulk.BatchReport{Results: []pgbulk.LoadResult{
		{Table: "a", Status: pgbulk.LoadStatusLoaded},
		{Table: "b", Status: pgbulk.LoadStatusFailed, Diagnostic: &pgbulk.Diagnostic{Kind: pgbulk.ErrorKindFileAccess}},
	}}
	if r.ErrorCount() != 1 {
		t.Fatalf("ErrorCount() = %d, want 1", r.ErrorCount())
	}
	if len(r.Failures()) != 1 || r.Failures()[0].Table != "b" {
		t.Errorf("Failures() = %+v", r.Failures())
	}
	if !errors.Is(r.Err(), pgbulk.ErrLoadFailed) {
		t.Errorf("Err() = %v, want ErrLoadFailed", r.Err())
	}

	ok := &pgbulk.BatchReport{Results: []pgbulk.LoadResult{{Status: pgbulk.LoadStatusLoaded}}}
	if ok.Err() != nil {
		t.Errorf("Err() = %v, want nil", ok.Err())
	}

	cancelled := &pgbulk.BatchReport{Cancelled: true}
	if !errors.Is(cancelled.Err(), pgbulk.ErrLoadFailed) {
		t.Errorf("cancelled Err() = %v, want ErrLoadFailed", cancelled.Err())
	}
}

func TestDiagnostic_Error(t *testing.T) {
	d := &pgbulk.Diagnostic{
		Kind:    pgbulk.ErrorKindFormat,
		Code:    "22P02",
		Line:    3,
		Column:  "match_id",
		Message: `invalid input syntax for type integer: "abc"`,
	}
	want := `format [22P02] line 3 column match_id: invalid input syntax for type integer: "abc"`
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoadConfig_SourcePath(t *testing.T) {
	cfg := pgbulk.LoadConfig{ProjectPath: "/proj"}
	if got := cfg.SourcePath("matches.csv"); got != filepath.Join("/proj", "matches.csv") {
		t.Errorf("SourcePath() = %q", got)
	}

	cfg.DataDir = "/data"
	if got := cfg.SourcePath("sub/m.csv"); got != filepath.Join("/data", "sub", "m.csv") {
		t.Errorf("SourcePath() = %q", got)
	}
	if got := cfg.SourcePath("/abs/x.csv"); got != "/abs/x.csv" {
		t.Errorf("SourcePath() = %q", got)
	}
}
