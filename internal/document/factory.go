package document

import (
	"fmt"

	"hv-go/internal/config"
	"hv-go/internal/hv"
)

// NewDocumentStoreFromConfig creates a DocumentStore based on the document config type.
// dataDir is the resolved vault data directory.
func NewDocumentStoreFromConfig(cfg config.DocumentConfig, dataDir string, clock hv.Clock) (hv.DocumentStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "file", "":
		if dataDir == "" {
			return nil, fmt.Errorf("file document store requires a data directory")
		}
		name := cfg.Name
		if name == "" {
			name = config.DefaultDocumentName
		}
		store, err := NewFileStore(dataDir, name, clock)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown document type: %s", cfg.Type)
	}
}
