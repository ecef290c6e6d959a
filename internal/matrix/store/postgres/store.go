// Package postgres implements the matrix store on PostgreSQL. The whole
// delete-and-repopulate sequence runs in one transaction, so concurrent
// readers observe either the previous snapshot or the new one, never a
// partially repopulated table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/pkg/sentinel"
)

const metaKeyLastUpdate = "last_update"

// Store implements store.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an established pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the tables if they do not exist. Called once at
// startup; safe to call repeatedly.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS teams (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS accesses (
	team_id        BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
	system         TEXT NOT NULL,
	classification TEXT NOT NULL DEFAULT '',
	profile        TEXT NOT NULL DEFAULT '',
	role           TEXT NOT NULL DEFAULT '',
	teams          TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (team_id, system)
);
CREATE TABLE IF NOT EXISTS matrix_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context) (matrix.Snapshot, error) {
	updatedAt, err := s.LastUpdate(ctx)
	if err != nil {
		return matrix.Snapshot{}, err
	}

	rows, err := s.pool.Query(ctx, `
SELECT t.name, a.system, a.classification, a.profile, a.role, a.teams
FROM teams t
LEFT JOIN accesses a ON a.team_id = t.id
ORDER BY t.name, a.system`)
	if err != nil {
		return matrix.Snapshot{}, fmt.Errorf("query matrix: %w", err)
	}
	defer rows.Close()

	var m matrix.Matrix
	byTeam := make(map[string]int)
	for rows.Next() {
		var team string
		var system, classification, profile, role, teams *string
		if err := rows.Scan(&team, &system, &classification, &profile, &role, &teams); err != nil {
			return matrix.Snapshot{}, fmt.Errorf("scan matrix row: %w", err)
		}

		i, ok := byTeam[team]
		if !ok {
			i = len(m)
			byTeam[team] = i
			m = append(m, matrix.TeamEntry{Team: team, Accesses: []matrix.Access{}})
		}
		if system == nil {
			continue // team without accesses
		}
		m[i].Accesses = append(m[i].Accesses, matrix.Access{
			System:         *system,
			Classification: deref(classification),
			Profile:        deref(profile),
			Role:           deref(role),
			Teams:          deref(teams),
		})
	}
	if err := rows.Err(); err != nil {
		return matrix.Snapshot{}, fmt.Errorf("iterate matrix rows: %w", err)
	}

	// The database collates by its own locale; re-normalize so the ordering
	// contract does not depend on server configuration.
	m.Normalize()
	return matrix.Snapshot{Matrix: m, UpdatedAt: updatedAt}, nil
}

func (s *Store) Write(ctx context.Context, snap matrix.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.clearAll(ctx, tx); err != nil {
		return err
	}
	for _, entry := range snap.Matrix {
		teamID, err := s.upsertTeam(ctx, tx, entry.Team)
		if err != nil {
			return err
		}
		for _, access := range entry.Accesses {
			if err := s.upsertAccess(ctx, tx, teamID, access); err != nil {
				return err
			}
		}
	}
	if err := s.setLastUpdate(ctx, tx, snap.UpdatedAt); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit write: %w", err)
	}
	return nil
}

// upsertTeam inserts the team row or leaves an existing one untouched,
// returning its id either way.
func (s *Store) upsertTeam(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
INSERT INTO teams (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert team %q: %w", name, err)
	}
	return id, nil
}

// upsertAccess inserts the access row or overwrites the non-key fields of
// an existing (team, system) pair, making re-ingestion idempotent.
func (s *Store) upsertAccess(ctx context.Context, tx pgx.Tx, teamID int64, access matrix.Access) error {
	_, err := tx.Exec(ctx, `
INSERT INTO accesses (team_id, system, classification, profile, role, teams)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (team_id, system) DO UPDATE SET
	classification = EXCLUDED.classification,
	profile        = EXCLUDED.profile,
	role           = EXCLUDED.role,
	teams          = EXCLUDED.teams`,
		teamID, access.System, access.Classification, access.Profile, access.Role, access.Teams)
	if err != nil {
		return fmt.Errorf("upsert access (%d, %q): %w", teamID, access.System, err)
	}
	return nil
}

func (s *Store) clearAll(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `DELETE FROM accesses`); err != nil {
		return fmt.Errorf("clear accesses: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM teams`); err != nil {
		return fmt.Errorf("clear teams: %w", err)
	}
	return nil
}

func (s *Store) setLastUpdate(ctx context.Context, tx pgx.Tx, t time.Time) error {
	_, err := tx.Exec(ctx, `
INSERT INTO matrix_meta (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		metaKeyLastUpdate, t.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set last update: %w", err)
	}
	return nil
}

func (s *Store) LastUpdate(ctx context.Context) (time.Time, error) {
	var stamp string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM matrix_meta WHERE key = $1`, metaKeyLastUpdate).Scan(&stamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, sentinel.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query last update: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode last update: %w", err)
	}
	return t, nil
}

func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.clearAll(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM matrix_meta WHERE key = $1`, metaKeyLastUpdate); err != nil {
		return fmt.Errorf("clear last update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
