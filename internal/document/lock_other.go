//go:build !unix

package document

import (
	"fmt"
	"os"
)

// Without flock the lock file is only opened; two processes on the same
// vault directory are not kept apart on these platforms.

func tryLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	return f, nil
}

func releaseLock(f *os.File) {
	if f == nil {
		return
	}
	_ = f.Close()
}
