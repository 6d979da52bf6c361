package pgbulk

import "context"

// Approver handles user interaction for approval workflows,
// particularly for the destructive database reset.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type database name for confirmation
type Approver interface {
	// RequestApproval prompts for confirmation before dropping and recreating a database.
	// Returns true if approved, false if denied.
	RequestApproval(ctx context.Context, dbName string) (bool, error)
}
