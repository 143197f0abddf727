// Package dirs locates the per-user directories the vault lives in and restores to.
package dirs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"

	"hv-go/internal/hv"
)

// Resolver maps an application identity to platform directories.
// The zero value is not usable; build one with NewResolver, or fill the
// fields directly in tests.
type Resolver struct {
	// DataHome is the platform's per-user data base directory.
	DataHome string
	// Downloads is the user's downloads directory.
	Downloads string
	// GOOS selects the platform layout.
	GOOS string
}

// NewResolver returns a Resolver for the current user and platform.
func NewResolver() *Resolver {
	return &Resolver{
		DataHome:  xdg.DataHome,
		Downloads: xdg.UserDirs.Download,
		GOOS:      runtime.GOOS,
	}
}

// Resolve returns the absolute data directory for the application,
// creating it if needed and checking that it is writable.
// On Windows the author is an extra path level; elsewhere it is unused.
func (r *Resolver) Resolve(appName, appAuthor string) (string, error) {
	if appName == "" {
		return "", fmt.Errorf("%w: application name is empty", hv.ErrDirectoryUnavailable)
	}
	if r.DataHome == "" {
		return "", fmt.Errorf("%w: no data directory for this user", hv.ErrDirectoryUnavailable)
	}

	dir := filepath.Join(r.DataHome, appName)
	if r.GOOS == "windows" && appAuthor != "" {
		dir = filepath.Join(r.DataHome, appAuthor, appName)
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", hv.ErrDirectoryUnavailable, err)
	}

	if err := EnsureWritable(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// DownloadsDir returns the default destination for restored files.
func (r *Resolver) DownloadsDir() (string, error) {
	if r.Downloads == "" {
		return "", fmt.Errorf("%w: no downloads directory for this user", hv.ErrDirectoryUnavailable)
	}
	return filepath.Abs(r.Downloads)
}

// EnsureWritable creates dir (mode 0700) when missing and checks it with a
// temporary file. Failures wrap hv.ErrDirectoryUnavailable.
func EnsureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("%w: creating %s: %w", hv.ErrDirectoryUnavailable, dir, err)
	}

	f, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return fmt.Errorf("%w: %s is not writable: %w", hv.ErrDirectoryUnavailable, dir, err)
	}
	f.Close()
	if err := os.Remove(f.Name()); err != nil {
		return fmt.Errorf("%w: removing temp file in %s: %w", hv.ErrDirectoryUnavailable, dir, err)
	}
	return nil
}
