// Package mirror fans a freshly persisted snapshot out to best-effort
// secondary sinks. Mirror failures are logged and reported in the ingestion
// summary, but they never fail or roll back the primary write.
package mirror

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/store"
)

// Sink receives a copy of each successfully ingested snapshot.
type Sink interface {
	// Name identifies the sink in ingestion reports and logs.
	Name() string
	Mirror(ctx context.Context, snap matrix.Snapshot) error
}

// defaultTimeout bounds each sink write so a slow mirror cannot hold the
// upload response hostage.
const defaultTimeout = 10 * time.Second

// Mirrors runs all configured sinks concurrently.
type Mirrors struct {
	sinks   []Sink
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures Mirrors.
type Option func(*Mirrors)

// WithTimeout overrides the per-sink write timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Mirrors) {
		m.timeout = d
	}
}

// New builds the mirror fan-out. A nil or empty sink list is valid and
// yields a no-op.
func New(logger *slog.Logger, sinks []Sink, opts ...Option) *Mirrors {
	m := &Mirrors{
		sinks:   sinks,
		timeout: defaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fanout writes the snapshot to every sink and returns the names of those
// that accepted it, sorted for deterministic reporting. Errors are logged
// per sink and swallowed.
func (m *Mirrors) Fanout(ctx context.Context, snap matrix.Snapshot) []string {
	if len(m.sinks) == 0 {
		return nil
	}

	var mu sync.Mutex
	accepted := make([]string, 0, len(m.sinks))

	g, ctx := errgroup.WithContext(ctx)
	for _, sink := range m.sinks {
		g.Go(func() error {
			sinkCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			if err := sink.Mirror(sinkCtx, snap); err != nil {
				m.logger.WarnContext(ctx, "mirror write failed",
					"sink", sink.Name(),
					"error", err,
				)
				return nil // best effort
			}
			mu.Lock()
			accepted = append(accepted, sink.Name())
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(accepted)
	return accepted
}

// StoreSink adapts a snapshot store into a mirror sink, e.g. a local bolt
// file kept alongside a redis or postgres primary.
type StoreSink struct {
	name  string
	store store.Store
}

// NewStoreSink wraps a store as a named sink.
func NewStoreSink(name string, s store.Store) *StoreSink {
	return &StoreSink{name: name, store: s}
}

func (s *StoreSink) Name() string {
	return s.name
}

func (s *StoreSink) Mirror(ctx context.Context, snap matrix.Snapshot) error {
	return s.store.Write(ctx, snap)
}
