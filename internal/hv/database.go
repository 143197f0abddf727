package hv

import "time"

// Operation is one recorded CLI operation against the vault.
type Operation struct {
	ID         int64
	RunID      string
	Operation  string
	Parameters string
	Status     string // "running", "success" or "error"
	StartedAt  time.Time
	FinishedAt time.Time // zero while the operation is running
}

// Finished reports whether the operation has a finish time.
func (o *Operation) Finished() bool {
	return !o.FinishedAt.IsZero()
}

// Database records the history of operations performed on a vault.
type Database interface {
	// CreateOperation records the start of an operation and returns it with its ID.
	CreateOperation(runID, operation, parameters string, startedAt time.Time) (*Operation, error)

	// FinishOperation stores the final status of an operation.
	FinishOperation(id int64, status string, finishedAt time.Time) error

	// ListOperations returns up to limit operations, newest first.
	ListOperations(limit int) ([]*Operation, error)

	// CheckMigrations verifies the schema is at the version this binary expects.
	CheckMigrations() error

	// Close closes the database connection.
	Close() error
}
