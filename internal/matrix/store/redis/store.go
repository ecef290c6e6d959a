// Package redis implements the matrix store on Redis, the shared key-value
// tier. Key names match the original deployment so an existing database
// keeps working after a rollout.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/pkg/sentinel"
)

const (
	keyMatrix     = "rbac:matrix"
	keyLastUpdate = "rbac:last-update"
)

// Store implements store.Store on a Redis client.
type Store struct {
	client *redis.Client
}

// New wraps an established Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Read(ctx context.Context) (matrix.Snapshot, error) {
	pipe := s.client.Pipeline()
	matrixCmd := pipe.Get(ctx, keyMatrix)
	updateCmd := pipe.Get(ctx, keyLastUpdate)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return matrix.Snapshot{}, fmt.Errorf("redis read: %w", err)
	}

	raw, err := matrixCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return matrix.Snapshot{}, sentinel.ErrNotFound
	}
	if err != nil {
		return matrix.Snapshot{}, fmt.Errorf("redis get matrix: %w", err)
	}

	var m matrix.Matrix
	if err := json.Unmarshal(raw, &m); err != nil {
		return matrix.Snapshot{}, fmt.Errorf("decode matrix: %w", err)
	}

	snap := matrix.Snapshot{Matrix: m}
	if stamp, err := updateCmd.Result(); err == nil {
		if t, perr := time.Parse(time.RFC3339Nano, stamp); perr == nil {
			snap.UpdatedAt = t
		}
	}
	return snap, nil
}

func (s *Store) Write(ctx context.Context, snap matrix.Snapshot) error {
	raw, err := json.Marshal(snap.Matrix)
	if err != nil {
		return fmt.Errorf("encode matrix: %w", err)
	}

	// TxPipeline wraps both SETs in MULTI/EXEC so the matrix and its
	// timestamp are applied as one unit.
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, keyMatrix, raw, 0)
	pipe.Set(ctx, keyLastUpdate, snap.UpdatedAt.Format(time.RFC3339Nano), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis write: %w", err)
	}
	return nil
}

func (s *Store) LastUpdate(ctx context.Context) (time.Time, error) {
	stamp, err := s.client.Get(ctx, keyLastUpdate).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, sentinel.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("redis get last update: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode last update: %w", err)
	}
	return t, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, keyMatrix, keyLastUpdate).Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}
