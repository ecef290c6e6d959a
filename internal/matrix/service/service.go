// Package service orchestrates matrix ingestion and lookup. Handlers talk
// to this layer; it owns the primary store, the best-effort mirrors, and
// the search ranker.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/ingest"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/metrics"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/mirror"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/store"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/search"
	dErrors "github.com/anahernandes-vtex/rbaciam-novo/pkg/domerrors"
	"github.com/anahernandes-vtex/rbaciam-novo/pkg/requestcontext"
	"github.com/anahernandes-vtex/rbaciam-novo/pkg/sentinel"
)

// Report summarizes a successful ingestion for the admin response.
type Report struct {
	Teams       int
	Accesses    int
	SkippedRows int
	// SavedTo lists the storage tiers that accepted the write, primary
	// first.
	SavedTo   []string
	UpdatedAt time.Time
}

// Service owns matrix reads and writes.
type Service struct {
	store       store.Store
	primaryName string
	mirrors     *mirror.Mirrors
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithMirrors attaches the best-effort mirror fan-out.
func WithMirrors(m *mirror.Mirrors) Option {
	return func(s *Service) {
		s.mirrors = m
	}
}

// WithMetrics attaches the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs the matrix service. primaryName labels the primary store
// tier in ingestion reports ("redis", "postgres", ...).
func New(primary store.Store, primaryName string, logger *slog.Logger, opts ...Option) (*Service, error) {
	if primary == nil {
		return nil, fmt.Errorf("matrix store is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	svc := &Service{
		store:       primary,
		primaryName: primaryName,
		logger:      logger,
		tracer:      otel.Tracer("matrix"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Ingest parses the uploaded CSV, replaces the persisted snapshot, and fans
// the result out to mirrors. A parse failure surfaces as bad_request and a
// storage failure as unavailable; in both cases the previous snapshot stays
// authoritative.
func (s *Service) Ingest(ctx context.Context, r io.Reader) (Report, error) {
	ctx, span := s.tracer.Start(ctx, "matrix.ingest")
	defer span.End()
	start := time.Now()

	m, stats, err := ingest.Parse(r)
	if err != nil {
		s.observeIngestFailure()
		return Report{}, err
	}

	snap := matrix.Snapshot{Matrix: m, UpdatedAt: requestcontext.Now(ctx).UTC()}
	if err := s.store.Write(ctx, snap); err != nil {
		s.observeIngestFailure()
		return Report{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist matrix")
	}

	savedTo := []string{s.primaryName}
	if s.mirrors != nil {
		savedTo = append(savedTo, s.mirrors.Fanout(ctx, snap)...)
	}

	span.SetAttributes(
		attribute.Int("matrix.teams", stats.Teams),
		attribute.Int("matrix.accesses", stats.Accesses),
	)
	if s.metrics != nil {
		s.metrics.ObserveIngest(start, stats.Teams, stats.Accesses)
	}
	s.logger.InfoContext(ctx, "matrix ingested",
		"request_id", requestcontext.RequestID(ctx),
		"user", requestcontext.UserEmail(ctx),
		"teams", stats.Teams,
		"accesses", stats.Accesses,
		"skipped_rows", stats.SkippedRows,
		"saved_to", savedTo,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return Report{
		Teams:       stats.Teams,
		Accesses:    stats.Accesses,
		SkippedRows: stats.SkippedRows,
		SavedTo:     savedTo,
		UpdatedAt:   snap.UpdatedAt,
	}, nil
}

// Matrix returns the current snapshot's matrix. An empty matrix (not an
// error) is returned when nothing has been ingested yet.
func (s *Service) Matrix(ctx context.Context) (matrix.Matrix, error) {
	snap, err := s.store.Read(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return matrix.Matrix{}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to read matrix")
	}
	return snap.Matrix, nil
}

// Team resolves one team by name, case-insensitively.
func (s *Service) Team(ctx context.Context, name string) (matrix.TeamEntry, error) {
	m, err := s.Matrix(ctx)
	if err != nil {
		return matrix.TeamEntry{}, err
	}
	entry, ok := m.Find(name)
	if !ok {
		return matrix.TeamEntry{}, dErrors.New(dErrors.CodeNotFound, "no team found with that name")
	}
	return entry, nil
}

// Suggest ranks team names against the typed query for the autocomplete.
func (s *Service) Suggest(ctx context.Context, query string) ([]search.Match, error) {
	ctx, span := s.tracer.Start(ctx, "matrix.suggest")
	defer span.End()
	start := time.Now()

	m, err := s.Matrix(ctx)
	if err != nil {
		return nil, err
	}

	matches := search.Rank(query, m.TeamNames())
	if s.metrics != nil {
		s.metrics.ObserveSuggest(start, len(matches))
	}
	return matches, nil
}

// LastUpdate returns the timestamp of the last ingestion, or the zero time
// when none has happened.
func (s *Service) LastUpdate(ctx context.Context) (time.Time, error) {
	t, err := s.store.LastUpdate(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to read last update")
	}
	return t, nil
}

func (s *Service) observeIngestFailure() {
	if s.metrics != nil {
		s.metrics.ObserveIngestFailure()
	}
}
