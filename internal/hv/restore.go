package hv

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
)

// DecodeAndSaveFile decodes the record named filename and writes its bytes to
// outputDir/filename, replacing any existing file there. An empty outputDir
// means the downloads directory the store was created with.
// The record is left in place, so a restore can be repeated.
// Returns the absolute path that was written.
func (s *VaultStore) DecodeAndSaveFile(ctx context.Context, filename string, outputDir string) (string, error) {
	s.mu.RLock()
	rec, ok := s.index[filename]
	var payload string
	if ok {
		payload = rec.Payload
	}
	s.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRecordNotFound, filename)
	}

	if outputDir == "" {
		outputDir = s.downloadsDir
	}
	if outputDir == "" {
		return "", fmt.Errorf("%w: no output directory and no downloads directory", ErrDirectoryUnavailable)
	}
	outputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}

	data, err := s.codec.Decode(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDecode, filename, err)
	}

	outPath := filepath.Join(outputDir, filename)
	if err := s.fsmgr.WriteFile(outPath, newContextReader(ctx, bytes.NewReader(data))); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}

	s.logger.Info("file restored", "filename", filename, "path", outPath, "size", len(data))
	return outPath, nil
}
