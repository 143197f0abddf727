package mirror

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"hv-go/internal/hv"
)

// FileSystemMirror keeps document copies as files under a root directory,
// typically a removable drive or a synced folder:
//
//	<root>/
//	  <vaultID>.json
type FileSystemMirror struct {
	root string
}

// NewFileSystemMirror creates a filesystem mirror rooted at the given path.
func NewFileSystemMirror(root string) (*FileSystemMirror, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create mirror directory: %w", err)
	}
	return &FileSystemMirror{root: root}, nil
}

func (m *FileSystemMirror) documentPath(vaultID string) string {
	return filepath.Join(m.root, vaultID+".json")
}

// PutDocument writes the document for vaultID, replacing any previous copy.
func (m *FileSystemMirror) PutDocument(ctx context.Context, vaultID string, r io.Reader, size int64) error {
	if !hv.ValidFilename(vaultID) {
		return fmt.Errorf("invalid vault id for filesystem mirror: %q", vaultID)
	}
	return m.writeFile(m.documentPath(vaultID), r, size)
}

// GetDocument copies the stored document for vaultID to w.
func (m *FileSystemMirror) GetDocument(ctx context.Context, vaultID string, w io.Writer) error {
	f, err := os.Open(m.documentPath(vaultID))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("document for vault %s: %w", vaultID, fs.ErrNotExist)
		}
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the mirror root is an accessible directory.
func (m *FileSystemMirror) ValidateSetup(ctx context.Context) error {
	info, err := os.Stat(m.root)
	if err != nil {
		return fmt.Errorf("mirror root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mirror root is not a directory: %s", m.root)
	}
	return nil
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (m *FileSystemMirror) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemMirror implements hv.Mirror interface
var _ hv.Mirror = (*FileSystemMirror)(nil)
