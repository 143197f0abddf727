package mirror

import (
	"context"
	"fmt"

	"hv-go/internal/config"
	"hv-go/internal/hv"
)

// NewMirrorFromConfig creates a Mirror implementation based on the mirror config type.
// Type "none" returns a nil Mirror and no error.
func NewMirrorFromConfig(ctx context.Context, cfg config.MirrorConfig) (hv.Mirror, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "memory":
		return NewMemoryMirror(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem mirror requires fs_root to be set")
		}
		m, err := NewFileSystemMirror(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "s3":
		m, err := NewS3MirrorFromConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown mirror type: %s", cfg.Type)
	}
}
