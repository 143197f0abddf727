package database

import (
	"fmt"
	"path/filepath"

	"hv-go/internal/config"
	"hv-go/internal/hv"
)

// FileName is the history database file inside the data directory.
const FileName = "history.db"

// NewDatabaseFromConfig creates a Database implementation based on the database config type.
// dataDir is used when cfg.DataDir is empty. Type "none" returns a nil Database.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, dataDir string) (hv.Database, error) {
	switch cfg.Type {
	case "sqlite":
		dir := cfg.DataDir
		if dir == "" {
			dir = dataDir
		}
		if dir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		db, err := NewSQLiteDatabase(filepath.Join(dir, FileName))
		if err != nil {
			return nil, err
		}
		return db, nil
	case "bolt":
		dir := cfg.DataDir
		if dir == "" {
			dir = dataDir
		}
		if dir == "" {
			return nil, fmt.Errorf("data_dir required for bolt database")
		}
		db, err := NewBoltDatabase(filepath.Join(dir, BoltFileName))
		if err != nil {
			return nil, err
		}
		return db, nil
	case "memory":
		db, err := NewSQLiteDatabase(":memory:")
		if err != nil {
			return nil, err
		}
		return db, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
