package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgbulk/internal/db"
	"github.com/vvka-141/pgbulk/internal/db/manager"
	"github.com/vvka-141/pgbulk/internal/services"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var resetCmd = &cobra.Command{
	Use:   "reset <project_path>",
	Short: "Drop and recreate the target database with empty tables",
	Long: `Reset drops the target database, recreates it and creates every table of
the project's catalog. No data is loaded.

The maintenance database (postgres by default) and template databases are
never reset.

Examples:
  pgbulk reset ./cricket -d cricket
  pgbulk reset ./loans -d loans --force`,
	Args:              RequireProjectPath,
	ValidArgsFunction: completeDirectories,
	RunE:              runReset,
}

type resetFlagValues struct {
	conn  connectionFlags
	force bool
}

var resetFlags resetFlagValues

func init() {
	rootCmd.AddCommand(resetCmd)

	registerConnectionFlags(resetCmd, &resetFlags.conn)
	resetCmd.Flags().BoolVar(&resetFlags.force, "force", false,
		"Skip interactive approval prompt (a short countdown still runs)")
}

func buildResetConfig(sourcePath string, flags resetFlagValues, verbose bool) (pgbulk.LoadConfig, *resolvedConnection, error) {
	projectCfg, err := requireProjectConfig(sourcePath)
	if err != nil {
		return pgbulk.LoadConfig{}, nil, err
	}
	plan, err := planProject(sourcePath, projectCfg, nil)
	if err != nil {
		return pgbulk.LoadConfig{}, nil, err
	}
	rc, err := resolveConnectionFromFlags(flags.conn, projectCfg)
	if err != nil {
		return pgbulk.LoadConfig{}, nil, err
	}

	cfg := pgbulk.LoadConfig{
		ProjectPath: sourcePath,
		Reset:       true,
		Force:       flags.force,
		Catalog:     plan.Catalog,
		Timeout:     pgbulk.DefaultTimeout,
		Verbose:     verbose,
	}
	applyConnection(&cfg, rc)

	if err := cfg.Validate(); err != nil {
		return pgbulk.LoadConfig{}, nil, err
	}
	return cfg, rc, nil
}

func runReset(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	logger, err := newLogger(cmd, verbose)
	if err != nil {
		return err
	}

	cfg, rc, err := buildResetConfig(args[0], resetFlags, verbose)
	if err != nil {
		return err
	}
	if verbose {
		logConnectionVerbose(logger, rc)
	}

	approver, err := newApprover(cfg.Force, verbose)
	if err != nil {
		return err
	}
	provisioner := services.NewProvisioningService(db.NewConnector, approver, logger, manager.New())

	ctx, stop := signalContext(context.Background(), "reset")
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := provisioner.Prepare(ctx, cfg); err != nil {
		return err
	}

	logger.Info("✓ Database %s reset with %d table(s)", cfg.DatabaseName, len(cfg.Catalog.Tables()))
	if rc.Prompted {
		offerSavePgpass(rc.ConnConfig, rc.TargetDB)
	}
	return nil
}
