package store

import (
	"context"
	"fmt"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/store/bolt"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/store/memory"
	pgstore "github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/store/postgres"
	redisstore "github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/store/redis"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/platform/config"
	platformpg "github.com/anahernandes-vtex/rbaciam-novo/internal/platform/postgres"
	platformredis "github.com/anahernandes-vtex/rbaciam-novo/internal/platform/redis"
)

// New builds the primary store selected by cfg.StoreBackend. The returned
// close function releases whatever connection or file handle the backend
// holds; it is a no-op for the memory backend.
func New(ctx context.Context, cfg config.Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch Backend(cfg.StoreBackend) {
	case BackendMemory:
		s, err := memory.NewSeeded()
		if err != nil {
			return nil, nil, fmt.Errorf("seed memory store: %w", err)
		}
		return s, noop, nil

	case BackendBolt:
		s, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt store: %w", err)
		}
		return s, s.Close, nil

	case BackendRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis store: %w", err)
		}
		return redisstore.New(client.Client), client.Close, nil

	case BackendPostgres:
		pool, err := platformpg.NewPool(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres store: %w", err)
		}
		s := pgstore.New(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, func() error { pool.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
