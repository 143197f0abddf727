package hv

import "errors"

// Every error returned by the vault store wraps exactly one of these, so
// callers can branch with errors.Is and still print the detailed message.
var (
	// ErrDirectoryUnavailable means the data directory cannot be resolved,
	// created, written or read.
	ErrDirectoryUnavailable = errors.New("vault directory unavailable")

	// ErrCorruptVault means the persisted document exists but cannot be parsed
	// or is structurally invalid. The store recovers with an empty vault.
	ErrCorruptVault = errors.New("vault document is corrupt")

	// ErrSourceNotFound means the file to add does not exist or is not a regular file.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrFileTooLarge means the source file exceeds MaxFileSizeBytes.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidFilename means the source's base name cannot be stored as a
	// record key: it is not valid UTF-8 or contains a path separator.
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrDuplicateFilename means a record with the same filename already exists.
	ErrDuplicateFilename = errors.New("duplicate filename")

	// ErrIndexOutOfRange means a position does not refer to a record.
	ErrIndexOutOfRange = errors.New("position out of range")

	// ErrRecordNotFound means no record has the requested filename.
	ErrRecordNotFound = errors.New("record not found")

	// ErrPersistence means writing the document failed. The in-memory state
	// keeps the attempted change and may be ahead of disk.
	ErrPersistence = errors.New("vault could not be saved")

	// ErrDecode means a stored payload does not decode to bytes.
	ErrDecode = errors.New("payload could not be decoded")

	// ErrVaultLocked means another process holds the vault document.
	ErrVaultLocked = errors.New("vault is in use by another process")
)
