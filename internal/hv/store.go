package hv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sync"

	"hv-go/internal/category"
)

// VaultStore owns the in-memory records and configuration of one vault.
// State is loaded once, mutated in memory and written back in full after
// every mutation. Mutations are serialized; listings may run concurrently.
type VaultStore struct {
	docs         DocumentStore
	fsmgr        FilesystemManager
	codec        Codec
	logger       Logger
	downloadsDir string
	maxFileSize  int64

	mu      sync.RWMutex
	config  VaultConfig
	records []*FileRecord
	index   map[string]*FileRecord // filename -> record
}

// NewVaultStore creates an empty VaultStore. Call Load (or use Open) to read
// the persisted state. downloadsDir is the default restore destination.
func NewVaultStore(docs DocumentStore, fsmgr FilesystemManager, codec Codec, logger Logger, downloadsDir string) *VaultStore {
	return &VaultStore{
		docs:         docs,
		fsmgr:        fsmgr,
		codec:        codec,
		logger:       logger,
		downloadsDir: downloadsDir,
		maxFileSize:  MaxFileSizeBytes,
		config:       DefaultVaultConfig(),
		index:        make(map[string]*FileRecord),
	}
}

// Open creates a VaultStore and loads its persisted state.
// A corrupt document is reported through the logger and replaced by an empty
// vault; only errors that make the vault unusable are returned.
func Open(ctx context.Context, docs DocumentStore, fsmgr FilesystemManager, codec Codec, logger Logger, downloadsDir string) (*VaultStore, error) {
	s := NewVaultStore(docs, fsmgr, codec, logger, downloadsDir)
	if err := s.Load(ctx); err != nil && !errors.Is(err, ErrCorruptVault) {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory state with the persisted document.
// A missing document yields an empty vault with default configuration.
// A corrupt document is quarantined, the vault starts empty, and the
// returned error wraps ErrCorruptVault.
func (s *VaultStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.docs.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptVault):
		s.reset(NewDocument())
		moved, qerr := s.docs.Quarantine(ctx)
		if qerr != nil {
			s.logger.Error("quarantining corrupt vault failed", "location", s.docs.Location(), "error", qerr)
		}
		s.logger.Warn("vault document corrupt, starting with an empty vault",
			"location", s.docs.Location(), "quarantined", moved, "error", err)
		return err
	case err != nil:
		return fmt.Errorf("loading vault: %w", err)
	case doc == nil:
		s.reset(NewDocument())
		s.logger.Info("no vault document found, starting new vault", "location", s.docs.Location())
		return nil
	}

	s.reset(doc)
	s.logger.Info("vault loaded", "location", s.docs.Location(), "records", len(s.records))
	return nil
}

// Save writes the complete current state to the document store.
func (s *VaultStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

// AddFile stores the file at sourcePath as a new record.
// The size limit is checked against the source before any content is read.
// The source is removed afterwards if mode (or the vault default) asks for it;
// removal only happens once the record has been persisted, and a failed
// removal is logged without undoing the add.
func (s *VaultStore) AddFile(ctx context.Context, sourcePath string, mode DeleteMode) (RecordInfo, error) {
	path, err := s.fsmgr.Resolve(sourcePath)
	if err != nil {
		return RecordInfo{}, fmt.Errorf("%w: %s: %w", ErrSourceNotFound, sourcePath, err)
	}
	if path.IsDir() {
		return RecordInfo{}, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path.String())
	}
	if path.Size() > s.maxFileSize {
		return RecordInfo{}, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, path.String(), path.Size(), s.maxFileSize)
	}

	name := filepath.Base(path.String())
	if !ValidFilename(name) {
		return RecordInfo{}, fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[name]; ok {
		return RecordInfo{}, fmt.Errorf("%w: %s", ErrDuplicateFilename, name)
	}

	data, err := s.readSource(ctx, path)
	if err != nil {
		return RecordInfo{}, err
	}

	// Nothing has changed yet; honour cancellation up to this point.
	if err := ctx.Err(); err != nil {
		return RecordInfo{}, fmt.Errorf("adding %s: %w", name, err)
	}

	rec := &FileRecord{
		Filename: name,
		Payload:  s.codec.Encode(data),
		Category: category.Classify(name),
	}
	s.records = append(s.records, rec)
	s.index[name] = rec
	info := s.info(len(s.records)-1, rec)

	s.logger.Info("file added", "filename", name, "category", rec.Category, "size", len(data))

	// The mutation is committed in memory; persisting it must not be cut short.
	if err := s.save(context.WithoutCancel(ctx)); err != nil {
		return info, err
	}

	if mode.resolve(s.config) {
		if err := s.fsmgr.Remove(path); err != nil {
			s.logger.Warn("removing original failed", "path", path.String(), "error", err)
		} else {
			s.logger.Info("original removed", "path", path.String())
		}
	}

	return info, nil
}

// AddDirectory adds every regular file found in dirPath (and below it when
// recursive is set) that the filesystem manager does not ignore.
// A failing file does not stop the others; the returned error joins all
// per-file failures and the returned infos describe the files that were added.
func (s *VaultStore) AddDirectory(ctx context.Context, dirPath string, recursive bool, mode DeleteMode) ([]RecordInfo, error) {
	dir, err := s.fsmgr.Resolve(dirPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceNotFound, dirPath, err)
	}
	if !dir.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceNotFound, dir.String())
	}

	files, err := s.fsmgr.FindFiles(dir, recursive)
	if err != nil {
		return nil, fmt.Errorf("finding files in %s: %w", dir.String(), err)
	}

	var (
		added []RecordInfo
		errs  []error
	)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		info, err := s.AddFile(ctx, f.String(), mode)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		added = append(added, info)
	}

	s.logger.Info("directory added", "path", dir.String(), "found", len(files), "added", len(added), "failed", len(errs))
	return added, errors.Join(errs...)
}

// readSource reads the whole source file, refusing files that grew past the
// limit since they were resolved.
func (s *VaultStore) readSource(ctx context.Context, path *Path) ([]byte, error) {
	rc, err := s.fsmgr.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path.String())
		}
		return nil, fmt.Errorf("opening %s: %w", path.String(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(newContextReader(ctx, rc), s.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path.String(), err)
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %s grew past %d bytes while reading", ErrFileTooLarge, path.String(), s.maxFileSize)
	}
	return data, nil
}

// DeleteAt removes the record at the zero-based position.
func (s *VaultStore) DeleteAt(ctx context.Context, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 0 || position >= len(s.records) {
		return fmt.Errorf("%w: %d (vault has %d records)", ErrIndexOutOfRange, position, len(s.records))
	}
	s.removeAt(position)
	return s.save(ctx)
}

// DeleteFile removes the record with the given filename.
func (s *VaultStore) DeleteFile(ctx context.Context, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[filename]; !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, filename)
	}
	for i, rec := range s.records {
		if rec.Filename == filename {
			s.removeAt(i)
			break
		}
	}
	return s.save(ctx)
}

// DeleteAll removes every record and returns how many were removed.
func (s *VaultStore) DeleteAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.records)
	s.records = nil
	s.index = make(map[string]*FileRecord)
	s.logger.Info("all records deleted", "count", count)

	return count, s.save(ctx)
}

// List returns the records in vault order without their payloads.
func (s *VaultStore) List() []RecordInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]RecordInfo, len(s.records))
	for i, rec := range s.records {
		infos[i] = s.info(i, rec)
	}
	return infos
}

// Len returns the number of records.
func (s *VaultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Config returns the vault-wide configuration.
func (s *VaultStore) Config() VaultConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetAccessLabel replaces the advisory access label.
func (s *VaultStore) SetAccessLabel(ctx context.Context, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config.AccessLabel = label
	return s.save(ctx)
}

// SetDeleteOriginalsDefault changes what AddFile does under DeleteDefault.
func (s *VaultStore) SetDeleteOriginalsDefault(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config.DeleteOriginalsDefault = enabled
	return s.save(ctx)
}

// Snapshot returns a copy of the complete state, as it would be persisted.
func (s *VaultStore) Snapshot() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.document()
}

// Replace installs doc as the vault state and persists it.
// doc must pass Validate; on failure nothing changes.
func (s *VaultStore) Replace(ctx context.Context, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset(doc)
	s.logger.Info("vault replaced", "records", len(s.records))
	return s.save(ctx)
}

// Location describes where the vault document is persisted.
func (s *VaultStore) Location() string {
	return s.docs.Location()
}

// save persists the current state. The caller must hold s.mu.
func (s *VaultStore) save(ctx context.Context) error {
	if err := s.docs.Save(ctx, s.document()); err != nil {
		s.logger.Error("saving vault failed", "location", s.docs.Location(), "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.logger.Debug("vault saved", "location", s.docs.Location(), "records", len(s.records))
	return nil
}

// document builds a Document from the current state. The caller must hold s.mu.
func (s *VaultStore) document() *Document {
	doc := &Document{
		Config:  s.config,
		Records: make([]FileRecord, len(s.records)),
	}
	for i, rec := range s.records {
		doc.Records[i] = *rec
	}
	return doc
}

// reset replaces the in-memory state with doc. The caller must hold s.mu.
func (s *VaultStore) reset(doc *Document) {
	s.config = doc.Config
	s.records = make([]*FileRecord, len(doc.Records))
	s.index = make(map[string]*FileRecord, len(doc.Records))
	for i := range doc.Records {
		rec := doc.Records[i]
		s.records[i] = &rec
		s.index[rec.Filename] = &rec
	}
}

// removeAt drops the record at position i. The caller must hold s.mu.
func (s *VaultStore) removeAt(i int) {
	rec := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.index, rec.Filename)
	s.logger.Info("record deleted", "filename", rec.Filename, "position", i)
}

func (s *VaultStore) info(position int, rec *FileRecord) RecordInfo {
	return RecordInfo{
		Position: position,
		Filename: rec.Filename,
		Category: rec.Category,
		Size:     s.codec.DecodedLen(rec.Payload),
	}
}
