package handler

import (
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/service"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/search"
)

// AccessResponse is an access row annotated with its grant category.
type AccessResponse struct {
	System         string `json:"system"`
	Classification string `json:"classification"`
	Profile        string `json:"profile"`
	Role           string `json:"role"`
	Teams          string `json:"teams"`
	AccessType     string `json:"accessType"`
}

// TeamResponse is the payload for a single team lookup.
type TeamResponse struct {
	Team     string           `json:"team"`
	Accesses []AccessResponse `json:"accesses"`
}

// MatchResponse is one autocomplete suggestion.
type MatchResponse struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Indices []int  `json:"indices"`
}

// SuggestResponse wraps the ranked suggestions.
type SuggestResponse struct {
	Matches []MatchResponse `json:"matches"`
}

// UploadResponse reports the outcome of a matrix upload.
type UploadResponse struct {
	Teams       int      `json:"teams"`
	Accesses    int      `json:"accesses"`
	SkippedRows int      `json:"skippedRows"`
	SavedTo     []string `json:"savedTo"`
	UpdatedAt   string   `json:"updatedAt"`
}

// LastUpdateResponse carries the last successful upload time, null when
// no matrix has ever been stored.
type LastUpdateResponse struct {
	LastUpdate *string `json:"lastUpdate"`
}

// FromTeamEntry maps a team entry to its response shape, classifying
// each access along the way.
func FromTeamEntry(entry matrix.TeamEntry) TeamResponse {
	resp := TeamResponse{Team: entry.Team, Accesses: make([]AccessResponse, 0, len(entry.Accesses))}
	for _, a := range entry.Accesses {
		resp.Accesses = append(resp.Accesses, AccessResponse{
			System:         a.System,
			Classification: a.Classification,
			Profile:        a.Profile,
			Role:           a.Role,
			Teams:          a.Teams,
			AccessType:     string(matrix.ClassifyAccess(a.Classification)),
		})
	}
	return resp
}

// FromMatches maps ranked matches to their response shape.
func FromMatches(matches []search.Match) []MatchResponse {
	out := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		indices := m.Indices
		if indices == nil {
			indices = []int{}
		}
		out = append(out, MatchResponse{Name: m.Name, Score: m.Score, Indices: indices})
	}
	return out
}

// FromReport maps an ingest report to the upload response.
func FromReport(r service.Report) UploadResponse {
	return UploadResponse{
		Teams:       r.Teams,
		Accesses:    r.Accesses,
		SkippedRows: r.SkippedRows,
		SavedTo:     r.SavedTo,
		UpdatedAt:   r.UpdatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
