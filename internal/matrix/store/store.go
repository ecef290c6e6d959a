// Package store defines the persistence contract for matrix snapshots and
// selects a concrete backend from configuration. Every backend has
// replace-all write semantics: readers observe either the full previous
// snapshot or the full new one, never a mix.
package store

import (
	"context"
	"time"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
)

// Store persists matrix snapshots. Implementations return
// sentinel.ErrNotFound from Read and LastUpdate when nothing has been
// persisted yet.
type Store interface {
	// Read returns the current snapshot.
	Read(ctx context.Context) (matrix.Snapshot, error)
	// Write atomically replaces the snapshot, matrix and timestamp as one
	// logical unit.
	Write(ctx context.Context, snap matrix.Snapshot) error
	// LastUpdate returns the timestamp of the last successful write.
	LastUpdate(ctx context.Context) (time.Time, error)
	// Clear removes the persisted snapshot.
	Clear(ctx context.Context) error
}

// Backend identifies a concrete store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendBolt     Backend = "bolt"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)
