// Package bolt implements the matrix store on an embedded bbolt database.
// It is the durable local tier: a single file, transactional writes, no
// external service. A crash mid-write cannot corrupt the previously
// committed snapshot.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/pkg/sentinel"
)

var (
	bucketMatrix  = []byte("matrix")
	keySnapshot   = []byte("snapshot")
	keyLastUpdate = []byte("last-update")
)

// Store implements store.Store backed by a bbolt file.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Read(_ context.Context) (matrix.Snapshot, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMatrix)
		if b == nil {
			return sentinel.ErrNotFound
		}
		v := b.Get(keySnapshot)
		if v == nil {
			return sentinel.ErrNotFound
		}
		// The value is only valid inside the transaction.
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return matrix.Snapshot{}, err
	}

	var snap matrix.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return matrix.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (s *Store) Write(_ context.Context, snap matrix.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	// Snapshot and timestamp land in one transaction, so readers never see
	// one without the other.
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketMatrix)
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put(keySnapshot, raw); err != nil {
			return fmt.Errorf("put snapshot: %w", err)
		}
		stamp, err := snap.UpdatedAt.MarshalText()
		if err != nil {
			return fmt.Errorf("encode timestamp: %w", err)
		}
		if err := b.Put(keyLastUpdate, stamp); err != nil {
			return fmt.Errorf("put timestamp: %w", err)
		}
		return nil
	})
}

func (s *Store) LastUpdate(_ context.Context) (time.Time, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMatrix)
		if b == nil {
			return sentinel.ErrNotFound
		}
		v := b.Get(keyLastUpdate)
		if v == nil {
			return sentinel.ErrNotFound
		}
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}

	var t time.Time
	if err := t.UnmarshalText(raw); err != nil {
		return time.Time{}, fmt.Errorf("decode timestamp: %w", err)
	}
	return t, nil
}

func (s *Store) Clear(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketMatrix) == nil {
			return nil
		}
		return tx.DeleteBucket(bucketMatrix)
	})
}
