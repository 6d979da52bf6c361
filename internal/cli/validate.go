package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgbulk/internal/files/filesystem"
	"github.com/vvka-141/pgbulk/internal/preflight"
	"github.com/vvka-141/pgbulk/internal/report"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project_path>",
	Short: "Check data files against the catalog without a database",
	Long: `Validate parses every configured data file with the catalog's column types,
using an in-process DuckDB engine. No PostgreSQL server is needed.

For each file it reports the number of rows that would be loaded, or the first
problem found: a missing file, a field that does not parse as its column type,
a wrong number of fields, NULLs in NOT NULL columns, or duplicate primary keys.

The command exits with code 13 when any file would fail to load.

Examples:
  pgbulk validate ./cricket
  pgbulk validate ./loans --table loan_default --output json`,
	Args:              RequireProjectPath,
	ValidArgsFunction: completeDirectories,
	RunE:              runValidate,
}

type validateFlagValues struct {
	tables    []string
	keepNulls bool
	output    string
}

var validateFlags validateFlagValues

func init() {
	rootCmd.AddCommand(validateCmd)
	registerValidateFlags(validateCmd, &validateFlags)
}

func registerValidateFlags(cmd *cobra.Command, f *validateFlagValues) {
	cmd.Flags().StringArrayVar(&f.tables, "table", nil,
		"Validate only this table (can be specified multiple times)")
	cmd.Flags().BoolVar(&f.keepNulls, "keep-nulls", true,
		"Treat empty fields as NULL (default: keep_nulls in pgbulk.yaml, else true)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "text",
		"Report format: text|json")

	cmd.RegisterFlagCompletionFunc("table", completeTableNames)     //nolint:errcheck
	cmd.RegisterFlagCompletionFunc("output", completeOutputFormats) //nolint:errcheck
}

// buildChecks turns a project's load plan into preflight checks.
func buildChecks(cmd *cobra.Command, sourcePath string, flags validateFlagValues) (*projectPlan, []preflight.Check, error) {
	projectCfg, err := requireProjectConfig(sourcePath)
	if err != nil {
		return nil, nil, err
	}
	plan, err := planProject(sourcePath, projectCfg, flags.tables)
	if err != nil {
		return nil, nil, err
	}

	cfg := pgbulk.LoadConfig{ProjectPath: sourcePath, DataDir: plan.DataDir, Delimiter: plan.Delimiter}
	keepNulls := resolveBool(cmd, "keep-nulls", flags.keepNulls, projectCfg.KeepNullsOrDefault())

	checks := make([]preflight.Check, len(plan.Loads))
	for i, l := range plan.Loads {
		checks[i] = preflight.Check{
			Table:     l.Table,
			Path:      cfg.SourcePath(l.File),
			Delimiter: cfg.DelimiterFor(l),
			KeepNulls: keepNulls,
		}
	}
	return plan, checks, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	return validateProject(cmd, args[0], validateFlags)
}

func validateProject(cmd *cobra.Command, sourcePath string, flags validateFlagValues) error {
	verbose := getVerboseFlag(cmd)

	logger, err := newLogger(cmd, verbose)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(flags.output)
	if err != nil {
		return err
	}

	plan, checks, err := buildChecks(cmd, sourcePath, flags)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(context.Background(), "validation")
	defer stop()

	reports, err := preflight.New(plan.Catalog, filesystem.NewOSFileSystem(), logger).Run(ctx, checks)
	if err != nil {
		return err
	}

	if format == report.FormatJSON {
		err = writeValidationJSON(cmd.OutOrStdout(), reports)
	} else {
		err = writeValidationText(cmd.OutOrStdout(), reports)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	failed := 0
	for _, r := range reports {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) would fail to load: %w", failed, len(reports), pgbulk.ErrLoadFailed)
	}
	return nil
}

func writeValidationJSON(w io.Writer, reports []preflight.FileReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

func writeValidationText(w io.Writer, reports []preflight.FileReport) error {
	for _, r := range reports {
		var err error
		switch {
		case r.Diagnostic != nil:
			_, err = fmt.Fprintf(w, "✗ %s (%s): %s\n", r.Table, r.File, r.Diagnostic.Error())
		case !r.OK():
			_, err = fmt.Fprintf(w, "✗ %s (%s): %d rows", r.Table, r.File, r.Rows)
			cols := make([]string, 0, len(r.NullViolations))
			for col := range r.NullViolations {
				cols = append(cols, col)
			}
			sort.Strings(cols)
			for _, col := range cols {
				fmt.Fprintf(w, ", %d NULL(s) in %s", r.NullViolations[col], col)
			}
			if r.DuplicateKeys > 0 {
				fmt.Fprintf(w, ", %d duplicate key(s)", r.DuplicateKeys)
			}
			fmt.Fprintln(w)
		default:
			_, err = fmt.Fprintf(w, "✓ %s (%s): %d rows\n", r.Table, r.File, r.Rows)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
