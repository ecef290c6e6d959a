// Package memory implements the matrix store in process memory. It is the
// fallback tier: zero external dependencies, optionally seeded with the
// matrix snapshot embedded at build time.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/pkg/sentinel"
)

// Store keeps the current snapshot behind a RWMutex. Reads hand out deep
// copies, so an in-flight ingestion can never be observed half-applied.
type Store struct {
	mu      sync.RWMutex
	snap    matrix.Snapshot
	present bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// NewSeeded creates an in-memory store pre-populated with the embedded
// snapshot, mirroring the static fallback data shipped with the UI.
func NewSeeded() (*Store, error) {
	snap, err := seedSnapshot()
	if err != nil {
		return nil, err
	}
	return &Store{snap: snap, present: true}, nil
}

func (s *Store) Read(_ context.Context) (matrix.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return matrix.Snapshot{}, sentinel.ErrNotFound
	}
	return matrix.Snapshot{Matrix: s.snap.Matrix.Clone(), UpdatedAt: s.snap.UpdatedAt}, nil
}

func (s *Store) Write(_ context.Context, snap matrix.Snapshot) error {
	clone := matrix.Snapshot{Matrix: snap.Matrix.Clone(), UpdatedAt: snap.UpdatedAt}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = clone
	s.present = true
	return nil
}

func (s *Store) LastUpdate(_ context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return time.Time{}, sentinel.ErrNotFound
	}
	return s.snap.UpdatedAt, nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = matrix.Snapshot{}
	s.present = false
	return nil
}
