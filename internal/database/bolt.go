package database

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hv-go/internal/hv"

	"go.etcd.io/bbolt"
)

// BoltFileName is the bbolt history file inside the data directory.
const BoltFileName = "history.bolt"

var bucketOperations = []byte("operations")

// BoltDatabase implements the Database interface on a single bbolt file.
// Operations are keyed by the bucket sequence, so ids increase like the
// SQLite autoincrement column.
type BoltDatabase struct {
	db *bbolt.DB
}

// boltOperation is the gob-encoded value stored per operation.
type boltOperation struct {
	RunID      string
	Operation  string
	Parameters string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewBoltDatabase opens or creates the bbolt database at path.
func NewBoltDatabase(path string) (*BoltDatabase, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketOperations)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating operations bucket: %w", err)
	}
	return &BoltDatabase{db: db}, nil
}

func idKey(id int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

func encodeOperation(op *boltOperation) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(op); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeOperation(data []byte) (*boltOperation, error) {
	var op boltOperation
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&op); err != nil {
		return nil, err
	}
	return &op, nil
}

func (s *BoltDatabase) CreateOperation(runID, operation, parameters string, startedAt time.Time) (*hv.Operation, error) {
	rec := &boltOperation{
		RunID:      runID,
		Operation:  operation,
		Parameters: parameters,
		Status:     "running",
		StartedAt:  startedAt.UTC(),
	}

	var id int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketOperations)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = int64(seq)

		data, err := encodeOperation(rec)
		if err != nil {
			return fmt.Errorf("encoding operation: %w", err)
		}
		return b.Put(idKey(id), data)
	})
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return rec.toOperation(id), nil
}

func (s *BoltDatabase) FinishOperation(id int64, status string, finishedAt time.Time) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketOperations)
		data := b.Get(idKey(id))
		if data == nil {
			return fmt.Errorf("no operation with id %d", id)
		}
		rec, err := decodeOperation(data)
		if err != nil {
			return fmt.Errorf("decoding operation %d: %w", id, err)
		}
		rec.Status = status
		rec.FinishedAt = finishedAt.UTC()

		data, err = encodeOperation(rec)
		if err != nil {
			return fmt.Errorf("encoding operation: %w", err)
		}
		return b.Put(idKey(id), data)
	})
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *BoltDatabase) ListOperations(limit int) ([]*hv.Operation, error) {
	var ops []*hv.Operation
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketOperations).Cursor()
		for k, v := c.Last(); k != nil && len(ops) < limit; k, v = c.Prev() {
			rec, err := decodeOperation(v)
			if err != nil {
				return fmt.Errorf("decoding operation: %w", err)
			}
			ops = append(ops, rec.toOperation(int64(binary.BigEndian.Uint64(k))))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

func (r *boltOperation) toOperation(id int64) *hv.Operation {
	return &hv.Operation{
		ID:         id,
		RunID:      r.RunID,
		Operation:  r.Operation,
		Parameters: r.Parameters,
		Status:     r.Status,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// Path returns the database file path.
func (s *BoltDatabase) Path() string {
	return s.db.Path()
}

// CheckMigrations is a no-op: the bucket layout has a single version.
func (s *BoltDatabase) CheckMigrations() error {
	return nil
}

// Close closes the database file.
func (s *BoltDatabase) Close() error {
	return s.db.Close()
}

var _ hv.Database = (*BoltDatabase)(nil)
