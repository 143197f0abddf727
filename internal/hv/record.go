package hv

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"hv-go/internal/category"
)

// MaxFileSizeBytes is the largest source file the vault accepts (20 MiB).
// It applies to the original byte length, never the encoded payload.
const MaxFileSizeBytes int64 = 20 * 1024 * 1024

// DefaultAccessLabel is the label a new vault starts with.
const DefaultAccessLabel = "vault"

// VaultConfig holds the vault-wide settings stored alongside the records.
type VaultConfig struct {
	// AccessLabel is an advisory label. It is stored in plain text and
	// does not control access to anything.
	AccessLabel string

	// DeleteOriginalsDefault decides whether AddFile removes the source
	// file when the caller does not say otherwise.
	DeleteOriginalsDefault bool
}

// DefaultVaultConfig returns the configuration of an empty vault.
func DefaultVaultConfig() VaultConfig {
	return VaultConfig{AccessLabel: DefaultAccessLabel}
}

// FileRecord is one stored file. Records are immutable once created.
type FileRecord struct {
	Filename string
	Payload  string // codec output
	Category category.Category
}

// RecordInfo is the read-only listing view of a record. It never carries the payload.
type RecordInfo struct {
	Position int
	Filename string
	Category category.Category
	Size     int64 // decoded size in bytes
}

// DeleteMode selects what AddFile does with the source file.
type DeleteMode int

const (
	// DeleteDefault follows VaultConfig.DeleteOriginalsDefault.
	DeleteDefault DeleteMode = iota
	// DeleteOriginal removes the source after it has been stored.
	DeleteOriginal
	// KeepOriginal leaves the source in place.
	KeepOriginal
)

// resolve reports whether the source should be removed under cfg.
func (m DeleteMode) resolve(cfg VaultConfig) bool {
	switch m {
	case DeleteOriginal:
		return true
	case KeepOriginal:
		return false
	default:
		return cfg.DeleteOriginalsDefault
	}
}

// Document is the complete persisted state of a vault.
type Document struct {
	Config  VaultConfig
	Records []FileRecord
}

// NewDocument returns the document of an empty vault.
func NewDocument() *Document {
	return &Document{
		Config:  DefaultVaultConfig(),
		Records: []FileRecord{},
	}
}

// Validate checks the structural invariants of a document: every filename is
// a plain, non-empty base name, filenames are unique and categories are known.
// Payloads are not decoded here; a bad payload only affects its own restore.
func (d *Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Records))
	for i, r := range d.Records {
		if !ValidFilename(r.Filename) {
			return fmt.Errorf("%w: record %d has invalid filename %q", ErrCorruptVault, i, r.Filename)
		}
		if _, ok := seen[r.Filename]; ok {
			return fmt.Errorf("%w: duplicate filename %q", ErrCorruptVault, r.Filename)
		}
		seen[r.Filename] = struct{}{}
		if _, ok := category.Parse(string(r.Category)); !ok {
			return fmt.Errorf("%w: record %q has unknown category %q", ErrCorruptVault, r.Filename, r.Category)
		}
	}
	return nil
}

// ValidFilename reports whether name can be used as a record key and as the
// file name of a restored file. Names must survive the JSON document
// unchanged, so invalid UTF-8 and backslashes are rejected on every OS.
func ValidFilename(name string) bool {
	if name == "" || name == "." || name == ".." || !utf8.ValidString(name) {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}
