package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		VaultID:   "vault-abc",
		AppName:   "HobbyVault",
		AppAuthor: "MyCompany",
		DataDir:   "/home/user/.local/share/HobbyVault",
		LogDir:    "/home/user/.local/share/HobbyVault/log",
		Document:  DocumentConfig{Type: "file", Name: "vault_data"},
		Database:  DatabaseConfig{Type: "sqlite", DataDir: "/var/lib/hv"},
		Mirror: MirrorConfig{
			Type:       "s3",
			S3Bucket:   "hobby",
			S3Prefix:   "vaults/",
			S3Region:   "eu-west-1",
			S3Endpoint: "http://localhost:9000",
		},
		Restore:    RestoreConfig{OutputDir: "/tmp/out"},
		Filesystem: FilesystemConfig{Ignore: []string{"*.tmp", "thumbs/"}},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.VaultID != original.VaultID {
		t.Errorf("VaultID = %q, want %q", got.VaultID, original.VaultID)
	}
	if got.DataDir != original.DataDir {
		t.Errorf("DataDir = %q, want %q", got.DataDir, original.DataDir)
	}
	if got.Document != original.Document {
		t.Errorf("Document = %+v, want %+v", got.Document, original.Document)
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if got.Mirror != original.Mirror {
		t.Errorf("Mirror = %+v, want %+v", got.Mirror, original.Mirror)
	}
	if got.Restore.OutputDir != "/tmp/out" {
		t.Errorf("Restore.OutputDir = %q, want %q", got.Restore.OutputDir, "/tmp/out")
	}
	if len(got.Filesystem.Ignore) != 2 {
		t.Fatalf("len(Filesystem.Ignore) = %d, want 2", len(got.Filesystem.Ignore))
	}
}

func TestManager_ReadAppliesDefaults(t *testing.T) {
	m := &Manager{}
	got, err := m.Read(strings.NewReader("vault_id = \"v1\"\n[mirror]\nfs_root = \"/m\"\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.AppName != DefaultAppName || got.AppAuthor != DefaultAppAuthor {
		t.Errorf("app identity = %q/%q, want defaults", got.AppName, got.AppAuthor)
	}
	if got.Document.Type != "file" || got.Document.Name != DefaultDocumentName {
		t.Errorf("Document = %+v, want file/%s", got.Document, DefaultDocumentName)
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", got.Database.Type)
	}
	if got.Mirror.Type != "none" {
		t.Errorf("Mirror.Type = %q, want none", got.Mirror.Type)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("vault-1", "/data/hv")

	if cfg.VaultID != "vault-1" {
		t.Errorf("VaultID = %q, want %q", cfg.VaultID, "vault-1")
	}
	if cfg.DataDir != "/data/hv" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "/data/hv")
	}
	if cfg.LogDir != filepath.Join("/data/hv", "log") {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, filepath.Join("/data/hv", "log"))
	}

	platform := NewConfig("vault-2", "")
	if platform.DataDir != "" || platform.LogDir != "" {
		t.Errorf("empty data dir should leave directories to the resolver, got %q/%q", platform.DataDir, platform.LogDir)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "hv.toml")

		if err := Init(path, NewConfig("v1", dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "hv.toml")
		cfg := NewConfig("v1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadOrDefault(t *testing.T) {
	t.Run("reads existing file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "hv.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Database = DatabaseConfig{Type: "memory"}
		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, found, err := ReadOrDefault(path, "")
		if err != nil {
			t.Fatalf("ReadOrDefault() error = %v", err)
		}
		if !found || got.VaultID != "read-test" || got.Database.Type != "memory" {
			t.Errorf("ReadOrDefault() = %+v, found=%v", got, found)
		}
	})

	t.Run("defaults for missing file", func(t *testing.T) {
		got, found, err := ReadOrDefault(filepath.Join(t.TempDir(), "hv.toml"), "/custom")
		if err != nil {
			t.Fatalf("ReadOrDefault() error = %v", err)
		}
		if found {
			t.Error("found = true for a missing file")
		}
		if got.DataDir != "/custom" || got.Document.Type != "file" {
			t.Errorf("ReadOrDefault() = %+v", got)
		}
	})

	t.Run("error for malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hv.toml")
		if err := os.WriteFile(path, []byte("vault_id = ["), 0644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := ReadOrDefault(path, ""); err == nil {
			t.Fatal("ReadOrDefault() expected error for malformed file")
		}
	})
}
