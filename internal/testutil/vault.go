package testutil

import (
	"context"
	"testing"

	"hv-go/internal/codec"
	"hv-go/internal/document"
	"hv-go/internal/hv"
)

// TestDownloadsDir is the default restore directory used by NewTestVault.
const TestDownloadsDir = "/downloads"

// NewTestDocumentStore creates an empty in-memory document store.
func NewTestDocumentStore() *document.MemoryStore {
	return document.NewMemoryStore()
}

// NewTestVault opens a VaultStore over the given fakes with a base64 codec
// and TestDownloadsDir as restore default.
func NewTestVault(t *testing.T, docs hv.DocumentStore, fsmgr hv.FilesystemManager) *hv.VaultStore {
	t.Helper()

	store, err := hv.Open(context.Background(), docs, fsmgr, codec.NewBase64Codec(), hv.NewNopLogger(), TestDownloadsDir)
	if err != nil {
		t.Fatalf("failed to open vault: %v", err)
	}
	return store
}
