package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgbulk/internal/scaffold"
	"github.com/vvka-141/pgbulk/internal/schema"
)

var initCmd = &cobra.Command{
	Use:   "init <target_path>",
	Short: "Initialize a new pgbulk project",
	Long: `Initialize a pgbulk project into the specified directory.

The init command creates:
- pgbulk.yaml with connection settings and the ordered load list
- data/ with a header-only CSV template for every table of the schema variant

Target directory must be empty or non-existent.

Examples:
  pgbulk init ./cricket                 # Cricket tables (default)
  pgbulk init ./loans --schema loan     # Loan tables, pipe-delimited
  pgbulk init . -d stats -U loader      # Current directory, custom connection`,
	Args:              RequireProjectPath,
	ValidArgsFunction: completeDirectories,
	RunE:              runInit,
}

var initOpts scaffold.Options

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initOpts.Schema, "schema", "s", schema.VariantCricket,
		"Schema variant whose tables the project loads")
	initCmd.Flags().StringVarP(&initOpts.Host, "host", "h", "", "Host written to pgbulk.yaml (default: localhost)")
	initCmd.Flags().IntVarP(&initOpts.Port, "port", "p", 0, "Port written to pgbulk.yaml (default: 5432)")
	initCmd.Flags().StringVarP(&initOpts.Username, "username", "U", "", "User written to pgbulk.yaml (default: postgres)")
	initCmd.Flags().StringVarP(&initOpts.Database, "database", "d", "",
		"Target database written to pgbulk.yaml (default: derived from the directory name)")

	initCmd.RegisterFlagCompletionFunc("schema", completeSchemaFlag) //nolint:errcheck
}

func runInit(cmd *cobra.Command, args []string) error {
	targetPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}
	verbose := getVerboseFlag(cmd)

	logger, err := newLogger(cmd, verbose)
	if err != nil {
		return err
	}

	if err := scaffold.NewScaffolder(logger).CreateProject(targetPath, initOpts); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	tree, err := scaffold.BuildFileTree(targetPath)
	if err != nil {
		// Non-fatal - just skip tree display
		fmt.Fprintf(os.Stderr, "\n✓ Project initialized in '%s' with schema '%s'\n", args[0], initOpts.Schema)
	} else {
		fmt.Fprintf(os.Stderr, "\n✓ Project initialized with schema '%s'\n\n", initOpts.Schema)
		fmt.Fprintln(os.Stderr, "Created structure:")
		fmt.Fprint(os.Stderr, tree)
	}

	fmt.Fprintln(os.Stderr, "\nNext steps:")
	fmt.Fprintf(os.Stderr, "  Copy your data files into %s\n", filepath.Join(args[0], scaffold.DataDir))
	fmt.Fprintf(os.Stderr, "  pgbulk validate %s\n", args[0])
	fmt.Fprintf(os.Stderr, "  pgbulk load %s\n", args[0])

	return nil
}
