package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAppName      = "HobbyVault"
	DefaultAppAuthor    = "MyCompany"
	DefaultDocumentName = "vault_data"
)

// Config represents the main configuration for hv.
type Config struct {
	VaultID   string `toml:"vault_id"`
	AppName   string `toml:"app_name"`
	AppAuthor string `toml:"app_author"`
	DataDir   string `toml:"data_dir"` // empty: platform data directory for AppName
	LogDir    string `toml:"log_dir"`  // empty: <data dir>/log

	Document   DocumentConfig   `toml:"document"`
	Database   DatabaseConfig   `toml:"database"`
	Mirror     MirrorConfig     `toml:"mirror"`
	Restore    RestoreConfig    `toml:"restore"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// DocumentConfig selects where the vault document is persisted.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DocumentConfig struct {
	Type string `toml:"type"`           // "file" (default) or "memory"
	Name string `toml:"name,omitempty"` // file name without extension, only used for type=file
}

// DatabaseConfig represents configuration for the operation history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite", "bolt", "memory" or "none"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite or bolt; empty: the vault data directory
}

// MirrorConfig represents configuration for the off-box document mirror.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type MirrorConfig struct {
	Type string `toml:"type"` // "none", "memory", "filesystem" or "s3"

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// RestoreConfig holds restore settings.
type RestoreConfig struct {
	OutputDir string `toml:"output_dir"` // empty: the user's downloads directory
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// NewConfig creates a new Config with the provided values and defaults for everything else.
// An empty dataDir leaves the data and log directories to the platform resolver.
func NewConfig(vaultID, dataDir string) *Config {
	cfg := &Config{
		VaultID: vaultID,
		DataDir: dataDir,
	}
	if dataDir != "" {
		cfg.LogDir = filepath.Join(dataDir, "log")
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills fields left empty in a config file.
func (c *Config) ApplyDefaults() {
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	if c.AppAuthor == "" {
		c.AppAuthor = DefaultAppAuthor
	}
	if c.Document.Type == "" {
		c.Document.Type = "file"
	}
	if c.Document.Type == "file" && c.Document.Name == "" {
		c.Document.Name = DefaultDocumentName
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Mirror.Type == "" {
		c.Mirror.Type = "none"
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// ReadOrDefault reads the config at path, or returns defaults when the file
// does not exist. found reports whether a file was read.
func ReadOrDefault(path, dataDir string) (cfg *Config, found bool, err error) {
	cfg, err = ReadFromFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewConfig("", dataDir), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
