package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

// connEnvVars are cleared so the developer's environment cannot leak into resolution.
var connEnvVars = []string{
	"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE",
	"DATABASE_URL", "PGBULK_CONNECTION_STRING",
	"AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET",
	"AWS_REGION", "AWS_DEFAULT_REGION",
}

func clearConnEnv(t *testing.T) {
	t.Helper()
	for _, name := range connEnvVars {
		t.Setenv(name, "")
	}
}

func isStdinTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// writeProject creates a project directory with pgbulk.yaml and the given
// files, paths relative to the project root.
func writeProject(t *testing.T, yaml string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pgbulk.yaml"), []byte(yaml), 0644))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

// addGlobalTestFlags mirrors the root command's persistent flags.
func addGlobalTestFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("verbose", "v", false, "")
	cmd.Flags().String("log-format", "", "")
}

// newLoadTestCmd returns a load command with fresh flag state, parsed from args.
func newLoadTestCmd(t *testing.T, args ...string) (*cobra.Command, *loadFlagValues) {
	t.Helper()
	var f loadFlagValues
	cmd := &cobra.Command{Use: "load"}
	addGlobalTestFlags(cmd)
	registerLoadFlags(cmd, &f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, &f
}

func newValidateTestCmd(t *testing.T, args ...string) (*cobra.Command, *validateFlagValues) {
	t.Helper()
	var f validateFlagValues
	cmd := &cobra.Command{Use: "validate"}
	addGlobalTestFlags(cmd)
	registerValidateFlags(cmd, &f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, &f
}

const cricketYAML = `connection:
  host: db.internal
  port: 5433
  username: loader
  database: cricket
schema: cricket
data_dir: data
`
