package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/internal/logging"
	"github.com/vvka-141/pgbulk/internal/schema"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

func TestIsDirectoryEmpty(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T) string
		wantEmpty bool
		wantErr   bool
	}{
		{
			name:      "nonexistent directory",
			setup:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "nonexistent") },
			wantEmpty: true,
		},
		{
			name:      "empty directory",
			setup:     func(t *testing.T) string { return t.TempDir() },
			wantEmpty: true,
		},
		{
			name: "directory with pgbulk.yaml",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("{}"), 0644))
				return dir
			},
		},
		{
			name: "directory with hidden file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PGPASSWORD=x"), 0644))
				return dir
			},
		},
		{
			name: "directory with subdirectory",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.Mkdir(filepath.Join(dir, DataDir), 0755))
				return dir
			},
		},
		{
			name: "path is a file",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "file.csv")
				require.NoError(t, os.WriteFile(p, nil, 0644))
				return p
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isEmpty, err := isDirectoryEmpty(tt.setup(t))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmpty, isEmpty)
		})
	}
}

func newScaffolder() *Scaffolder {
	return NewScaffolder(logging.NewNullLogger())
}

func TestCreateProject_RefusesNonEmptyDirectory(t *testing.T) {
	targetDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(targetDir, "existing.txt"), []byte("x"), 0644))

	err := newScaffolder().CreateProject(targetDir, Options{Schema: schema.VariantCricket})
	require.ErrorIs(t, err, pgbulk.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "not empty")
}

func TestCreateProject_UnknownSchema(t *testing.T) {
	err := newScaffolder().CreateProject(filepath.Join(t.TempDir(), "p"), Options{Schema: "weather"})
	require.ErrorIs(t, err, pgbulk.ErrInvalidConfig)
}

func TestCreateProject_Cricket(t *testing.T) {
	targetDir := filepath.Join(t.TempDir(), "ipl-2024")
	require.NoError(t, newScaffolder().CreateProject(targetDir, Options{Schema: schema.VariantCricket}))

	cfg, err := config.Load(targetDir)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "cricket", cfg.Schema)
	assert.Equal(t, "ipl_2024", cfg.Connection.Database)
	assert.Equal(t, "localhost", cfg.Connection.Host)
	assert.Equal(t, pgbulk.DefaultPort, cfg.Connection.Port)
	assert.Equal(t, DataDir, cfg.DataDir)
	assert.True(t, cfg.CreateTables)
	assert.True(t, cfg.KeepNullsOrDefault())

	loads, err := cfg.TableLoads()
	require.NoError(t, err)
	require.Len(t, loads, 4)
	assert.Equal(t, pgbulk.TableLoad{Table: "matches", File: "matches.csv"}, loads[0])

	header, err := os.ReadFile(filepath.Join(targetDir, DataDir, "players.csv"))
	require.NoError(t, err)
	assert.Equal(t, "player_id,match_id,player_name,team\n", string(header))
}

func TestCreateProject_LoanUsesPipe(t *testing.T) {
	targetDir := filepath.Join(t.TempDir(), "loans")
	opts := Options{Schema: schema.VariantLoan, Host: "db.internal", Port: 6543, Username: "loader", Database: "risk"}
	require.NoError(t, newScaffolder().CreateProject(targetDir, opts))

	cfg, err := config.Load(targetDir)
	require.NoError(t, err)
	assert.Equal(t, "|", cfg.Delimiter)
	assert.Equal(t, "db.internal", cfg.Connection.Host)
	assert.Equal(t, 6543, cfg.Connection.Port)
	assert.Equal(t, "loader", cfg.Connection.Username)
	assert.Equal(t, "risk", cfg.Connection.Database)

	header, err := os.ReadFile(filepath.Join(targetDir, DataDir, "loan_default.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(header), "loan_id|age|income|"), string(header))
}

func TestBuildFileTree(t *testing.T) {
	rootDir := filepath.Join(t.TempDir(), "project")
	require.NoError(t, newScaffolder().CreateProject(rootDir, Options{Schema: schema.VariantCricket}))

	tree, err := BuildFileTree(rootDir)
	require.NoError(t, err)

	for _, elem := range []string{"pgbulk.yaml", "data/", "matches.csv", "deliveries.csv"} {
		assert.Contains(t, tree, elem)
	}
	assert.Contains(t, tree, "└── ")
	assert.Contains(t, tree, "├── ")
}

func TestBuildFileTree_EmptyDirectory(t *testing.T) {
	rootDir := t.TempDir()

	tree, err := BuildFileTree(rootDir)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(tree, "\n"), "only the root line")
}
