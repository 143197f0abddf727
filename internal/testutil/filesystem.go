package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"hv-go/internal/hv"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Size        int64 // reported size; content is zero bytes when Content is nil
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing.
// It counts Open calls so tests can assert that no content was read,
// and failures can be injected for Open, Remove and WriteFile.
type MockFilesystemManager struct {
	mu    sync.Mutex
	files map[string]*MockFile
	opens int

	OpenErr   error
	RemoveErr error
	WriteErr  error
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string]*MockFile),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[abs(path)] = &MockFile{
		Content:     content,
		Size:        int64(len(content)),
		Permissions: 0644,
		ModTime:     time.Now(),
	}
}

// AddSizedFile adds a file of the given size whose content is all zero bytes,
// without holding that content in memory.
func (m *MockFilesystemManager) AddSizedFile(path string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[abs(path)] = &MockFile{
		Size:        size,
		Permissions: 0644,
		ModTime:     time.Now(),
	}
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[abs(path)] = &MockFile{
		Permissions: 0755,
		ModTime:     time.Now(),
		IsDirectory: true,
	}
}

// Exists reports whether path is present.
func (m *MockFilesystemManager) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[abs(path)]
	return ok
}

// Content returns the content stored at path.
func (m *MockFilesystemManager) Content(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[abs(path)]
	if !ok || f.IsDirectory {
		return nil, false
	}
	return append([]byte(nil), f.Content...), true
}

// Opens returns how many times Open has been called.
func (m *MockFilesystemManager) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*hv.Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	absPath := abs(rawPath)
	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("stat path: %s: %w", absPath, fs.ErrNotExist)
	}
	return hv.NewPath(absPath, file.IsDirectory, newMockFileInfo(absPath, file)), nil
}

func (m *MockFilesystemManager) Open(path *hv.Path) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opens++
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path.String(), fs.ErrNotExist)
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path.String())
	}
	if file.Content == nil {
		return io.NopCloser(io.LimitReader(zeroReader{}, file.Size)), nil
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) Remove(path *hv.Path) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	if _, ok := m.files[path.String()]; !ok {
		return fmt.Errorf("remove %s: %w", path.String(), fs.ErrNotExist)
	}
	delete(m.files, path.String())
	return nil
}

func (m *MockFilesystemManager) WriteFile(absPath string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("writing data: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.files[abs(filepath.Dir(absPath))] = &MockFile{Permissions: 0755, ModTime: time.Now(), IsDirectory: true}
	m.files[abs(absPath)] = &MockFile{
		Content:     data,
		Size:        int64(len(data)),
		Permissions: 0644,
		ModTime:     time.Now(),
	}
	return nil
}

// FindFiles returns the files below dir in lexical order. Ignore patterns are not applied.
func (m *MockFilesystemManager) FindFiles(dir *hv.Path, recursive bool) ([]*hv.Path, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}

	prefix := dir.String() + string(filepath.Separator)
	var names []string
	for p, f := range m.files {
		if f.IsDirectory || !strings.HasPrefix(p, prefix) {
			continue
		}
		if !recursive && strings.ContainsRune(p[len(prefix):], filepath.Separator) {
			continue
		}
		names = append(names, p)
	}
	sort.Strings(names)

	paths := make([]*hv.Path, len(names))
	for i, p := range names {
		paths[i] = hv.NewPath(p, false, newMockFileInfo(p, m.files[p]))
	}
	return paths, nil
}

func abs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return p
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func newMockFileInfo(path string, f *MockFile) *mockFileInfo {
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    f.Size,
		mode:    f.Permissions,
		modTime: f.ModTime,
		isDir:   f.IsDirectory,
	}
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// Compile-time check
var _ hv.FilesystemManager = (*MockFilesystemManager)(nil)
