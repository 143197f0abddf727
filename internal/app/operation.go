package app

// VaultOperation tracks a CLI operation against the vault.
// Operations are created in memory with ID=0. Only mutating commands
// persist them (giving them an auto-increment ID from the history database).
type VaultOperation struct {
	ID         int64
	RunID      string
	Operation  string
	Parameters string
	Status     string // "success" or "error"
	Mutating   bool
}

// NewVaultOperation creates a new in-memory vault operation.
func NewVaultOperation(runID, operation string) *VaultOperation {
	return &VaultOperation{
		RunID:     runID,
		Operation: operation,
		Status:    "success",
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *VaultOperation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed if err is non-nil and returns err.
func (op *VaultOperation) Fail(err error) error {
	if err != nil {
		op.Status = "error"
	}
	return err
}
