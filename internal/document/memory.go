package document

import (
	"context"
	"fmt"
	"sync"

	"hv-go/internal/hv"
)

// MemoryStore keeps the serialized document in memory.
// It goes through Marshal and Unmarshal so it behaves like FileStore,
// making it useful for testing. This implementation is safe for concurrent use.
type MemoryStore struct {
	mu          sync.Mutex
	data        []byte
	quarantined [][]byte
	saveErr     error
	saves       int
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SetData replaces the stored bytes, for seeding documents (including corrupt ones).
func (m *MemoryStore) SetData(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
}

// Data returns a copy of the stored bytes, or nil if nothing was saved.
func (m *MemoryStore) Data() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}
	return append([]byte(nil), m.data...)
}

// FailSaves makes every following Save return err. Pass nil to recover.
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Saves returns the number of successful saves.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Quarantined returns the documents moved aside by Quarantine.
func (m *MemoryStore) Quarantined() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.quarantined...)
}

func (m *MemoryStore) Load(ctx context.Context) (*hv.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, nil
	}
	return Unmarshal(m.data)
}

func (m *MemoryStore) Save(ctx context.Context, doc *hv.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	m.data = data
	m.saves++
	return nil
}

func (m *MemoryStore) Quarantine(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return "", nil
	}
	m.quarantined = append(m.quarantined, m.data)
	m.data = nil
	return fmt.Sprintf("memory#corrupt-%d", len(m.quarantined)), nil
}

func (m *MemoryStore) Location() string {
	return "memory"
}

func (m *MemoryStore) Close() error {
	return nil
}

// Compile-time check that MemoryStore implements hv.DocumentStore interface
var _ hv.DocumentStore = (*MemoryStore)(nil)
