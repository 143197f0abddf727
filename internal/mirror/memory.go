// Package mirror keeps off-box copies of the serialized vault document.
package mirror

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"hv-go/internal/hv"
)

// MemoryMirror is an in-memory implementation of the Mirror interface.
// It is useful for testing. This implementation is safe for concurrent use.
type MemoryMirror struct {
	documents map[string][]byte // vaultID -> document
	puts      int
	mu        sync.RWMutex
}

// NewMemoryMirror creates a new empty in-memory mirror.
func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{
		documents: make(map[string][]byte),
	}
}

// PutDocument stores the document for vaultID, replacing any previous copy.
func (m *MemoryMirror) PutDocument(ctx context.Context, vaultID string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.documents[vaultID] = data
	m.puts++
	return nil
}

// GetDocument writes the stored document for vaultID to w.
func (m *MemoryMirror) GetDocument(ctx context.Context, vaultID string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.documents[vaultID]
	if !ok {
		return fmt.Errorf("document for vault %s: %w", vaultID, fs.ErrNotExist)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}

// Puts returns how many documents have been stored.
func (m *MemoryMirror) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// ValidateSetup always succeeds for the in-memory mirror.
func (m *MemoryMirror) ValidateSetup(ctx context.Context) error {
	return nil
}

// Compile-time check that MemoryMirror implements hv.Mirror interface
var _ hv.Mirror = (*MemoryMirror)(nil)
