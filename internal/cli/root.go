package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vvka-141/pgbulk/internal/logging"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var rootCmd = &cobra.Command{
	Use:   "pgbulk",
	Short: "Bulk-load delimited files into PostgreSQL",
	Long: `pgbulk loads delimited text files into PostgreSQL tables using COPY.

Every file is loaded in its own transaction: a file either lands completely
or not at all. A failed file never stops the rest of the batch; each failure
is reported with the server's error code, line and message, and the run ends
with a row count for every table.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed
  12 - User denied reset approval
  13 - One or more table loads failed
  14 - pgbulk.yaml not found`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for pgbulk")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("log-format", "",
		"Log format: text|json (default: plain console output)\n"+
			"Structured formats carry the batch run id on every line")

	rootCmd.RegisterFlagCompletionFunc("log-format", completeLogFormats) //nolint:errcheck
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

// newLogger builds the logger selected by --log-format.
func newLogger(cmd *cobra.Command, verbose bool) (pgbulk.Logger, error) {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil || format == "" {
		return logging.NewConsoleLogger(verbose), nil
	}
	return logging.NewStructuredLogger(format, verbose)
}
