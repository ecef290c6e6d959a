// Package matrix defines the team access matrix: the directory mapping each
// team to its sorted list of system access grants. A Snapshot is the unit of
// persistence; every ingestion replaces the whole snapshot.
package matrix

import (
	"sort"
	"strings"
	"time"

	"github.com/anahernandes-vtex/rbaciam-novo/pkg/ptbr"
)

// Access is one team-to-system access grant. Immutable once created.
type Access struct {
	System         string `json:"system"`
	Classification string `json:"classification"`
	Profile        string `json:"profile"`
	Role           string `json:"role"`
	Teams          string `json:"teams"`
}

// TeamEntry is one team's access list, sorted ascending by system under
// pt-BR collation. No two accesses share the same system.
type TeamEntry struct {
	Team     string   `json:"team"`
	Accesses []Access `json:"accesses"`
}

// Matrix is the full directory, sorted ascending by team name under pt-BR
// collation. Team names are unique.
type Matrix []TeamEntry

// Snapshot pairs a matrix with the timestamp of the ingestion that produced
// it. Stores persist both in one logical operation.
type Snapshot struct {
	Matrix    Matrix    `json:"matrix"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TeamNames projects the team names in matrix order. This is the candidate
// list the search ranker operates on.
func (m Matrix) TeamNames() []string {
	names := make([]string, len(m))
	for i, entry := range m {
		names[i] = entry.Team
	}
	return names
}

// Find resolves a team by name, case-insensitively, matching the lookup
// behavior of the search UI (typed text resolves against the full name).
func (m Matrix) Find(name string) (TeamEntry, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return TeamEntry{}, false
	}
	for _, entry := range m {
		if strings.ToLower(entry.Team) == want {
			return entry, true
		}
	}
	return TeamEntry{}, false
}

// AccessCount sums the accesses across all teams.
func (m Matrix) AccessCount() int {
	n := 0
	for _, entry := range m {
		n += len(entry.Accesses)
	}
	return n
}

// Normalize sorts teams and each team's accesses under pt-BR collation.
// Stores whose backends do not preserve locale order call this after reads
// so every snapshot observed by callers honors the ordering invariant.
func (m Matrix) Normalize() {
	for _, entry := range m {
		accesses := entry.Accesses
		sort.SliceStable(accesses, func(i, j int) bool {
			return ptbr.Less(accesses[i].System, accesses[j].System)
		})
	}
	sort.SliceStable(m, func(i, j int) bool {
		return ptbr.Less(m[i].Team, m[j].Team)
	})
}

// Clone deep-copies the matrix so callers can never mutate a store's
// in-memory snapshot through a returned slice.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for i, entry := range m {
		accesses := make([]Access, len(entry.Accesses))
		copy(accesses, entry.Accesses)
		out[i] = TeamEntry{Team: entry.Team, Accesses: accesses}
	}
	return out
}
