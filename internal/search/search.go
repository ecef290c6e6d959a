// Package search implements the fuzzy team-name ranker backing the
// autocomplete. Rank is a pure function of its inputs; it carries no state
// and is safe to call concurrently.
//
// The scoring constants are a behavioral contract: suggestion snapshots in
// the UI depend on the exact ranking, so they are preserved as-is rather
// than re-tuned.
package search

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/anahernandes-vtex/rbaciam-novo/pkg/ptbr"
)

// MaxResults caps the suggestion list. The UI renders at most this many
// entries; the cap is a hard contract, not a hint.
const MaxResults = 50

// minScore is the noise floor: weaker partial matches are dropped even
// though they scored.
const minScore = 10

// Match is one ranked candidate. Indices are rune offsets into Name marking
// the characters to highlight.
type Match struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Indices []int  `json:"indices"`
}

// Rank scores every candidate against the query and returns the suggestion
// list: descending by score, ties broken by pt-BR collation of the name,
// truncated to MaxResults.
//
// An empty (or all-whitespace) query matches every candidate with score 0
// in the caller's order. Candidates with no matching characters are
// excluded entirely.
func Rank(query string, candidates []string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]Match, 0, len(candidates))
		for _, name := range candidates {
			if len(results) == MaxResults {
				break
			}
			results = append(results, Match{Name: name, Indices: []int{}})
		}
		return results
	}

	results := make([]Match, 0, len(candidates))
	for _, name := range candidates {
		if m, ok := matchOne(query, name); ok && m.Score >= minScore {
			results = append(results, m)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return ptbr.Less(results[i].Name, results[j].Name)
	})

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

// matchOne scores a single candidate. Rules are mutually exclusive and
// tried in order: substring, full subsequence, partial subsequence.
func matchOne(query, name string) (Match, bool) {
	qr := []rune(strings.ToLower(query))
	nr := []rune(strings.ToLower(name))

	// Contiguous substring: earlier occurrences score higher.
	if start := indexRunes(nr, qr); start >= 0 {
		indices := make([]int, len(qr))
		for i := range indices {
			indices[i] = start + i
		}
		return Match{Name: name, Score: 100 - max(0, start), Indices: indices}, true
	}

	// Greedy left-to-right subsequence walk.
	indices := make([]int, 0, len(qr))
	qi := 0
	for i := 0; i < len(nr) && qi < len(qr); i++ {
		if nr[i] == qr[qi] {
			indices = append(indices, i)
			qi++
		}
	}

	if qi == len(qr) {
		// All query characters consumed: score by how tightly packed the
		// matched characters are and how much of the candidate they cover.
		span := indices[len(indices)-1] - indices[0] + 1
		compactness := float64(len(qr)) / float64(span)
		density := float64(len(qr)) / float64(len(nr))
		score := int(math.Round(50 + compactness*30 + density*20))
		return Match{Name: name, Score: score, Indices: indices}, true
	}

	if len(indices) > 0 {
		score := int(math.Round(10 + float64(len(indices))/float64(len(qr))*40))
		return Match{Name: name, Score: score, Indices: indices}, true
	}

	return Match{}, false
}

// indexRunes returns the rune offset of the first occurrence of needle in
// haystack, or -1. Offsets are in runes because highlight indices address
// characters, not bytes.
func indexRunes(haystack, needle []rune) int {
	byteIdx := strings.Index(string(haystack), string(needle))
	if byteIdx < 0 {
		return -1
	}
	return utf8.RuneCountInString(string(haystack)[:byteIdx])
}
