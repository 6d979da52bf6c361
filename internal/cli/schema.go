package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgbulk/internal/schema"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [variant]",
	Short: "Print the CREATE TABLE statements of a schema variant",
	Long: `Schema prints the DDL pgbulk applies when it creates tables.

Without arguments the cricket variant is printed. With --project the tables
declared in that project's pgbulk.yaml are printed instead.

Examples:
  pgbulk schema
  pgbulk schema loan
  pgbulk schema --project ./mydata --if-not-exists`,
	Args:              OptionalVariant,
	ValidArgsFunction: completeSchemaVariants,
	RunE:              runSchema,
}

var (
	schemaProject     string
	schemaIfNotExists bool
)

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringVar(&schemaProject, "project", "",
		"Print the catalog of this project directory")
	schemaCmd.Flags().BoolVar(&schemaIfNotExists, "if-not-exists", false,
		"Emit CREATE TABLE IF NOT EXISTS")
}

func resolveSchemaCatalog(args []string, projectPath string) (*schema.Catalog, error) {
	if projectPath != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: a variant and --project are mutually exclusive", pgbulk.ErrInvalidConfig)
		}
		projectCfg, err := requireProjectConfig(projectPath)
		if err != nil {
			return nil, err
		}
		return schema.FromProject(projectCfg)
	}

	variant := schema.VariantCricket
	if len(args) == 1 {
		variant = args[0]
	}
	return schema.Builtin(variant)
}

func runSchema(cmd *cobra.Command, args []string) error {
	catalog, err := resolveSchemaCatalog(args, schemaProject)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), schema.DDL(catalog, schemaIfNotExists))
	return nil
}
