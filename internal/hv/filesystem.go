package hv

import "io"

// FilesystemManager abstracts the file access the vault store needs, so the
// store can be tested without touching the real filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and rejects
	// anything that is not a regular file or directory.
	// Missing paths produce an error wrapping fs.ErrNotExist.
	Resolve(rawPath string) (*Path, error)

	// Open opens a file for reading.
	Open(path *Path) (io.ReadCloser, error)

	// Remove deletes a file.
	Remove(path *Path) error

	// WriteFile writes r to absPath atomically (temp file + rename),
	// creating the parent directory if needed and replacing any existing file.
	WriteFile(absPath string, r io.Reader) error

	// FindFiles discovers regular files under a directory, skipping ignored ones.
	FindFiles(dir *Path, recursive bool) ([]*Path, error)
}
