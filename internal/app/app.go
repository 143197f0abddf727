package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hv-go/internal/codec"
	"hv-go/internal/config"
	"hv-go/internal/database"
	"hv-go/internal/dirs"
	"hv-go/internal/document"
	"hv-go/internal/fs"
	"hv-go/internal/hv"
	"hv-go/internal/mirror"
)

// HVApp is the application layer between the CLI and the VaultStore.
// It constructs all dependencies from config, records mutating operations in
// the history database, and pushes the document to the mirror on Close.
type HVApp struct {
	cfg     *config.Config
	dataDir string
	docs    hv.DocumentStore
	db      hv.Database // nil when history is disabled
	mirror  hv.Mirror   // nil when no mirror is configured
	fsmgr   hv.FilesystemManager
	store   *hv.VaultStore
	clock   hv.Clock
	logger  hv.Logger
	op      *VaultOperation
	logFile *os.File

	// partial is set when a failed operation still changed the saved vault.
	partial bool
}

// NewHVApp creates a fully wired HVApp from the given config.
// operation identifies the CLI command being run (e.g. "add", "rm").
// The caller must call Close when done.
func NewHVApp(ctx context.Context, cfg *config.Config, operation string) (*HVApp, error) {
	return newHVApp(ctx, cfg, operation, hv.RealClock{}, hv.UUIDGenerator{})
}

func newHVApp(ctx context.Context, cfg *config.Config, operation string, clock hv.Clock, ids hv.IDGenerator) (*HVApp, error) {
	resolver := dirs.NewResolver()

	dataDir, err := resolveDataDir(cfg, resolver)
	if err != nil {
		return nil, err
	}

	logDir := cfg.LogDir
	if logDir == "" {
		logDir = filepath.Join(dataDir, "log")
	}

	runID := ids.New()
	slogger, logFile, err := newLogger(logDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	a := &HVApp{
		cfg:     cfg,
		dataDir: dataDir,
		fsmgr:   fs.NewOSFilesystemManager(cfg.Filesystem.Ignore),
		clock:   clock,
		logger:  logger,
		op:      NewVaultOperation(runID, operation),
		logFile: logFile,
	}

	if err := a.open(ctx, resolver); err != nil {
		a.closeResources()
		return nil, err
	}
	return a, nil
}

// open builds the stores. On error the caller releases whatever was opened.
func (a *HVApp) open(ctx context.Context, resolver *dirs.Resolver) error {
	var err error

	a.docs, err = document.NewDocumentStoreFromConfig(a.cfg.Document, a.dataDir, a.clock)
	if err != nil {
		return fmt.Errorf("opening vault document: %w", err)
	}

	a.db, err = database.NewDatabaseFromConfig(a.cfg.Database, a.dataDir)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	if a.db != nil {
		if err := a.db.CheckMigrations(); err != nil {
			return fmt.Errorf("database schema out of date: %w", err)
		}
	}

	a.mirror, err = mirror.NewMirrorFromConfig(ctx, a.cfg.Mirror)
	if err != nil {
		return fmt.Errorf("creating mirror: %w", err)
	}

	downloads := a.cfg.Restore.OutputDir
	if downloads == "" {
		// Restores without an explicit directory fail later with ErrDirectoryUnavailable.
		if d, err := resolver.DownloadsDir(); err == nil {
			downloads = d
		}
	}

	a.store, err = hv.Open(ctx, a.docs, a.fsmgr, codec.NewBase64Codec(), a.logger, downloads)
	if err != nil {
		return fmt.Errorf("opening vault: %w", err)
	}
	return nil
}

// resolveDataDir returns the configured data directory, or the platform one.
func resolveDataDir(cfg *config.Config, resolver *dirs.Resolver) (string, error) {
	if cfg.DataDir == "" {
		return resolver.Resolve(cfg.AppName, cfg.AppAuthor)
	}
	dir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", hv.ErrDirectoryUnavailable, err)
	}
	if err := dirs.EnsureWritable(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// persistOperation records the operation in the history database and marks it
// as mutating, so Close finishes the record and pushes the mirror.
func (a *HVApp) persistOperation(parameters ...string) error {
	a.op.Mutating = true
	if a.op.Parameters == "" {
		a.op.Parameters = strings.Join(parameters, " ")
	}
	if a.db == nil || a.op.Persisted() {
		return nil
	}
	dbOp, err := a.db.CreateOperation(a.op.RunID, a.op.Operation, a.op.Parameters, a.clock.Now())
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// DataDir returns the resolved vault data directory.
func (a *HVApp) DataDir() string {
	return a.dataDir
}

// Location describes where the vault document is stored.
func (a *HVApp) Location() string {
	return a.store.Location()
}

// AddPath adds a file, or every file in a directory, to the vault.
func (a *HVApp) AddPath(ctx context.Context, rawPath string, recursive bool, mode hv.DeleteMode) ([]hv.RecordInfo, error) {
	if err := a.persistOperation(rawPath); err != nil {
		return nil, err
	}

	p, err := a.fsmgr.Resolve(rawPath)
	if err == nil && p.IsDir() {
		infos, err := a.store.AddDirectory(ctx, p.String(), recursive, mode)
		if err != nil && len(infos) > 0 && !errors.Is(err, hv.ErrPersistence) {
			a.partial = true
		}
		return infos, a.op.Fail(err)
	}

	info, err := a.store.AddFile(ctx, rawPath, mode)
	if err != nil {
		return nil, a.op.Fail(err)
	}
	return []hv.RecordInfo{info}, nil
}

// List returns the records in vault order.
func (a *HVApp) List() []hv.RecordInfo {
	return a.store.List()
}

// DeleteAt removes the record at the zero-based position.
func (a *HVApp) DeleteAt(ctx context.Context, position int) error {
	if err := a.persistOperation(fmt.Sprint(position)); err != nil {
		return err
	}
	return a.op.Fail(a.store.DeleteAt(ctx, position))
}

// DeleteFile removes the record with the given filename.
func (a *HVApp) DeleteFile(ctx context.Context, filename string) error {
	if err := a.persistOperation(filename); err != nil {
		return err
	}
	return a.op.Fail(a.store.DeleteFile(ctx, filename))
}

// DeleteAll removes every record and returns how many were removed.
func (a *HVApp) DeleteAll(ctx context.Context) (int, error) {
	if err := a.persistOperation(); err != nil {
		return 0, err
	}
	n, err := a.store.DeleteAll(ctx)
	return n, a.op.Fail(err)
}

// Restore writes the named record to outputDir (or the configured default).
func (a *HVApp) Restore(ctx context.Context, filename, outputDir string) (string, error) {
	return a.store.DecodeAndSaveFile(ctx, filename, outputDir)
}

// Config returns the vault-wide configuration stored in the document.
func (a *HVApp) Config() hv.VaultConfig {
	return a.store.Config()
}

// SetAccessLabel replaces the advisory access label.
func (a *HVApp) SetAccessLabel(ctx context.Context, label string) error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	return a.op.Fail(a.store.SetAccessLabel(ctx, label))
}

// SetDeleteOriginalsDefault changes whether add removes source files by default.
func (a *HVApp) SetDeleteOriginalsDefault(ctx context.Context, enabled bool) error {
	if err := a.persistOperation(fmt.Sprint(enabled)); err != nil {
		return err
	}
	return a.op.Fail(a.store.SetDeleteOriginalsDefault(ctx, enabled))
}

// GetHistory returns the most recent operations, newest first.
func (a *HVApp) GetHistory(limit int) ([]*hv.Operation, error) {
	if a.db == nil {
		return nil, fmt.Errorf("operation history is disabled (database type is none)")
	}
	return a.db.ListOperations(limit)
}

// CheckMirror verifies the configured mirror is reachable.
func (a *HVApp) CheckMirror(ctx context.Context) error {
	m, err := a.requireMirror()
	if err != nil {
		return err
	}
	return m.ValidateSetup(ctx)
}

// PushMirror uploads the current document to the mirror.
func (a *HVApp) PushMirror(ctx context.Context) error {
	m, err := a.requireMirror()
	if err != nil {
		return err
	}

	data, err := document.Marshal(a.store.Snapshot())
	if err != nil {
		return err
	}
	if err := m.PutDocument(ctx, a.cfg.VaultID, bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("pushing to mirror: %w", err)
	}
	a.logger.Info("document pushed to mirror", "vault_id", a.cfg.VaultID, "bytes", len(data))
	return nil
}

// PullMirror replaces the local vault with the mirrored document.
// The mirrored document is validated before anything local changes.
// Returns the number of records now in the vault.
func (a *HVApp) PullMirror(ctx context.Context) (int, error) {
	m, err := a.requireMirror()
	if err != nil {
		return 0, err
	}
	if err := a.persistOperation(); err != nil {
		return 0, err
	}
	// The pulled document is what the mirror already holds.
	a.op.Mutating = false

	var buf bytes.Buffer
	if err := m.GetDocument(ctx, a.cfg.VaultID, &buf); err != nil {
		return 0, a.op.Fail(fmt.Errorf("pulling from mirror: %w", err))
	}
	doc, err := document.Unmarshal(buf.Bytes())
	if err != nil {
		return 0, a.op.Fail(fmt.Errorf("mirrored document: %w", err))
	}
	if err := a.store.Replace(ctx, doc); err != nil {
		return 0, a.op.Fail(err)
	}
	a.logger.Info("document pulled from mirror", "vault_id", a.cfg.VaultID, "records", len(doc.Records))
	return len(doc.Records), nil
}

func (a *HVApp) requireMirror() (hv.Mirror, error) {
	if a.mirror == nil {
		return nil, fmt.Errorf("no mirror configured")
	}
	if a.cfg.VaultID == "" {
		return nil, fmt.Errorf("vault_id is not set; run 'hv config init'")
	}
	return a.mirror, nil
}

// Close finalizes the operation and closes all resources.
// For mutating operations it pushes the document to the mirror when the
// saved vault changed, then finishes the history record.
func (a *HVApp) Close() error {
	var errs []error

	if a.op.Mutating && a.mirror != nil && a.cfg.VaultID != "" && (a.op.Status == "success" || a.partial) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := a.PushMirror(ctx); err != nil {
			a.logger.Error("mirror push failed", "error", err)
			errs = append(errs, err)
			a.op.Status = "error"
		}
		cancel()
	}

	if a.op.Persisted() {
		if err := a.db.FinishOperation(a.op.ID, a.op.Status, a.clock.Now()); err != nil {
			errs = append(errs, fmt.Errorf("finishing operation: %w", err))
		}
	}

	errs = append(errs, a.closeResources())
	return errors.Join(errs...)
}

func (a *HVApp) closeResources() error {
	var errs []error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	if a.docs != nil {
		if err := a.docs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing vault document: %w", err))
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return errors.Join(errs...)
}
