package hv

import (
	"context"
	"io"
)

// Mirror keeps an off-box copy of the serialized vault document.
// Every Put replaces the previous copy for the same vault.
type Mirror interface {
	// PutDocument stores the document bytes for vaultID.
	// size is the number of bytes that will be read from r.
	PutDocument(ctx context.Context, vaultID string, r io.Reader, size int64) error

	// GetDocument retrieves the document bytes for vaultID and writes them to w.
	GetDocument(ctx context.Context, vaultID string, w io.Writer) error

	// ValidateSetup verifies that the mirror is accessible and properly configured.
	ValidateSetup(ctx context.Context) error
}
