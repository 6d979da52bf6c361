package schema

import (
	"fmt"
	"regexp"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateIdentifier accepts lower-case unquoted PostgreSQL identifiers of at
// most 63 bytes.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier: %w", pgbulk.ErrInvalidConfig)
	}
	if len(name) > pgbulk.MaxIdentifierLength {
		return fmt.Errorf("identifier %q exceeds %d bytes: %w", name, pgbulk.MaxIdentifierLength, pgbulk.ErrInvalidConfig)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("identifier %q must match %s: %w", name, identifierPattern.String(), pgbulk.ErrInvalidConfig)
	}
	return nil
}
