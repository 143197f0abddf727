package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hv-go/internal/hv"
)

// FileStore keeps the vault document in a JSON file inside a directory.
// Opening a FileStore takes an exclusive process lock on the directory;
// a second store on the same directory fails with hv.ErrVaultLocked until
// the first is closed.
type FileStore struct {
	path  string
	clock hv.Clock
	lock  *os.File
}

// NewFileStore opens the document <dir>/<name>.json, locking <dir>/<name>.lock.
func NewFileStore(dir, name string, clock hv.Clock) (*FileStore, error) {
	if name == "" {
		return nil, fmt.Errorf("document name must not be empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", hv.ErrDirectoryUnavailable, dir, err)
	}

	lock, err := tryLock(filepath.Join(dir, name+".lock"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", hv.ErrVaultLocked, dir, err)
	}

	return &FileStore{
		path:  filepath.Join(dir, name+".json"),
		clock: clock,
		lock:  lock,
	}, nil
}

// Load reads and validates the document. A missing file returns (nil, nil).
func (s *FileStore) Load(ctx context.Context) (*hv.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %w", hv.ErrDirectoryUnavailable, s.path, err)
	}

	doc, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return doc, nil
}

// Save writes doc to a temp file, syncs it, and renames it over the document.
func (s *FileStore) Save(ctx context.Context, doc *hv.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	return writeFile(s.path, data)
}

// Quarantine renames the current document to <name>.json.corrupt-<timestamp>.
func (s *FileStore) Quarantine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	target := s.path + ".corrupt-" + s.clock.Now().UTC().Format("20060102T150405Z")
	if err := os.Rename(s.path, target); err != nil {
		return "", fmt.Errorf("quarantining vault document: %w", err)
	}
	return target, nil
}

// Location returns the document's path.
func (s *FileStore) Location() string {
	return s.path
}

// Close releases the process lock.
func (s *FileStore) Close() error {
	releaseLock(s.lock)
	s.lock = nil
	return nil
}

// writeFile atomically writes data to path.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileStore implements hv.DocumentStore interface
var _ hv.DocumentStore = (*FileStore)(nil)
