// Package ingest transforms the uploaded access spreadsheet into a
// normalized matrix. Rows are grouped by team, deduplicated by (team,
// system) with last-write-wins, and sorted under pt-BR collation so the
// same CSV always produces byte-identical output.
package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	dErrors "github.com/anahernandes-vtex/rbaciam-novo/pkg/domerrors"
)

// Column headers of the unified access spreadsheet. The classification
// column keeps the name the spreadsheet owners gave it.
const (
	headerTeam           = "Time"
	headerSystem         = "Sistema"
	headerClassification = "Acesso proposto Líder"
	headerProfile        = "Perfil"
	headerRole           = "Role"
	headerTeams          = "times"
)

// Stats reports what an ingestion run consumed and produced. Skipped rows
// are counted, never fatal.
type Stats struct {
	Teams       int
	Accesses    int
	SkippedRows int
}

// Parse reads the CSV and builds a normalized matrix.
//
// A syntactic CSV failure (unbalanced quoting and the like) returns a
// bad_request domain error and no matrix; a row missing its team or system
// after trimming is silently skipped and counted. The whole batch never
// fails because of individual malformed rows.
func Parse(r io.Reader) (matrix.Matrix, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, Stats{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to parse CSV")
	}
	if len(records) == 0 {
		return nil, Stats{}, dErrors.New(dErrors.CodeBadRequest, "CSV has no header row")
	}

	columns := headerIndex(records[0])
	rows := records[1:]

	var stats Stats
	groups := newGrouping()

	for _, record := range rows {
		team := strings.TrimSpace(field(record, columns, headerTeam))
		system := strings.TrimSpace(field(record, columns, headerSystem))
		if team == "" || system == "" {
			stats.SkippedRows++
			continue
		}

		groups.upsert(team, matrix.Access{
			System:         system,
			Classification: strings.TrimSpace(field(record, columns, headerClassification)),
			Profile:        strings.TrimSpace(field(record, columns, headerProfile)),
			Role:           strings.TrimSpace(field(record, columns, headerRole)),
			Teams:          strings.TrimSpace(field(record, columns, headerTeams)),
		})
	}

	m := groups.matrix()
	m.Normalize()

	stats.Teams = len(m)
	stats.Accesses = m.AccessCount()
	return m, stats, nil
}

// headerIndex maps header names to column positions.
func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}

func field(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// grouping accumulates accesses per team in first-appearance order, keyed
// for deterministic iteration independent of map order.
type grouping struct {
	order   []string
	entries map[string]*teamGroup
}

type teamGroup struct {
	accesses []matrix.Access
	bySystem map[string]int
}

func newGrouping() *grouping {
	return &grouping{entries: make(map[string]*teamGroup)}
}

// upsert appends the access, or overwrites the existing record for the same
// (team, system) pair. Last write wins on conflicting fields, which makes
// re-ingesting the same CSV idempotent.
func (g *grouping) upsert(team string, access matrix.Access) {
	group, ok := g.entries[team]
	if !ok {
		group = &teamGroup{bySystem: make(map[string]int)}
		g.entries[team] = group
		g.order = append(g.order, team)
	}

	if i, exists := group.bySystem[access.System]; exists {
		group.accesses[i] = access
		return
	}
	group.bySystem[access.System] = len(group.accesses)
	group.accesses = append(group.accesses, access)
}

func (g *grouping) matrix() matrix.Matrix {
	m := make(matrix.Matrix, 0, len(g.order))
	for _, team := range g.order {
		m = append(m, matrix.TeamEntry{Team: team, Accesses: g.entries[team].accesses})
	}
	return m
}
