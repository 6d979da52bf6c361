package pgbulk

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // All loads completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitApprovalDenied  = 12 // User denied reset approval
	ExitLoadFailed      = 13 // One or more table loads failed
	ExitConfigMissing   = 14 // pgbulk.yaml not found
)

const (
	// DefaultForceApprovalCountdown is the countdown duration before force approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultPort is the PostgreSQL server port used when none is configured.
	DefaultPort = 5432

	// DefaultManagementDB is the default database to connect to for management operations.
	DefaultManagementDB = "postgres"

	// DefaultTimeout bounds a whole batch run, including provisioning.
	DefaultTimeout = 30 * time.Minute

	// DefaultDelimiter is the field separator used when neither the load entry,
	// the project config nor the schema variant specifies one.
	DefaultDelimiter = ","

	// DefaultFileExtension is appended to a table name to derive its source file.
	DefaultFileExtension = ".csv"

	// MaxIdentifierLength is PostgreSQL's NAMEDATALEN - 1.
	MaxIdentifierLength = 63

	// MaxErrorPreviewLength caps the offending value echoed back in diagnostics.
	MaxErrorPreviewLength = 200
)

// SupportedDelimiters lists the field separators accepted for COPY.
// Tab is accepted for TSV exports.
var SupportedDelimiters = []string{",", "|", ";", "\t"}

// IsSupportedDelimiter reports whether d is one of SupportedDelimiters.
func IsSupportedDelimiter(d string) bool {
	for _, s := range SupportedDelimiters {
		if s == d {
			return true
		}
	}
	return false
}

// IsTemplateDatabase reports whether name is one of PostgreSQL's template databases.
func IsTemplateDatabase(name string) bool {
	return name == "template0" || name == "template1"
}
