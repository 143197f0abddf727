package hv

import "context"

// DocumentStore persists the complete vault state as a single document.
type DocumentStore interface {
	// Load reads the persisted document.
	// It returns (nil, nil) when no document has been saved yet, and an error
	// wrapping ErrCorruptVault when the document cannot be parsed or fails Validate.
	Load(ctx context.Context) (*Document, error)

	// Save replaces the persisted document with doc.
	// The previous document stays intact until the new one is fully written.
	Save(ctx context.Context, doc *Document) error

	// Quarantine moves an unreadable document aside so that the next Save
	// does not destroy it. It returns the new location, or "" if there was
	// nothing to move.
	Quarantine(ctx context.Context) (string, error)

	// Location describes where the document lives, for logs and display.
	Location() string

	// Close releases any resources (such as the process lock) held by the store.
	Close() error
}
