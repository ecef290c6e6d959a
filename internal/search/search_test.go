package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Name
	}
	return out
}

func TestRankEmptyQuery(t *testing.T) {
	candidates := []string{"Checkout", "Billing", "Água"}

	got := Rank("", candidates)

	require.Len(t, got, 3)
	// Original order preserved, every candidate scores zero.
	assert.Equal(t, candidates, names(got))
	for _, m := range got {
		assert.Zero(t, m.Score)
		assert.Empty(t, m.Indices)
	}

	// Whitespace-only queries behave like empty ones.
	assert.Equal(t, got, Rank("   ", candidates))
}

func TestRankSubstringBeatsSubsequence(t *testing.T) {
	got := Rank("abc", []string{"xaxbxc", "xabcx", "abcdef"})

	require.Len(t, got, 3)
	assert.Equal(t, []string{"abcdef", "xabcx", "xaxbxc"}, names(got))

	// Substring at offset 0 scores the full 100; each position later costs
	// one point.
	assert.Equal(t, 100, got[0].Score)
	assert.Equal(t, 99, got[1].Score)
	assert.Equal(t, []int{0, 1, 2}, got[0].Indices)
	assert.Equal(t, []int{1, 2, 3}, got[1].Indices)

	// The subsequence match reports the exact offsets consumed.
	assert.Equal(t, []int{1, 3, 5}, got[2].Indices)
}

func TestRankSubsequenceScore(t *testing.T) {
	got := Rank("abc", []string{"axbxc"})

	require.Len(t, got, 1)
	// span=5 → compactness 3/5; density 3/5; round(50+18+12) = 80.
	assert.Equal(t, 80, got[0].Score)
	assert.Equal(t, []int{0, 2, 4}, got[0].Indices)
}

func TestRankPartialMatch(t *testing.T) {
	// Only "a" and "b" of "abz" are found in order; rule 4 applies.
	got := Rank("abz", []string{"xaxbx"})

	require.Len(t, got, 1)
	// round(10 + 2/3*40) = 37.
	assert.Equal(t, 37, got[0].Score)
	assert.Equal(t, []int{1, 3}, got[0].Indices)
}

func TestRankNoMatch(t *testing.T) {
	assert.Empty(t, Rank("zzz", []string{"abc"}))
}

func TestRankNoiseFloor(t *testing.T) {
	// Substring matches deep into a long name fall below the floor of 10
	// and are dropped.
	longName := ""
	for i := 0; i < 95; i++ {
		longName += "x"
	}
	longName += "abc"

	got := Rank("abc", []string{longName})
	assert.Empty(t, got, "substring at offset 95 scores 5 and sits below the floor")
}

func TestRankCaseInsensitive(t *testing.T) {
	got := Rank("CHECK", []string{"checkout"})

	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].Score)
	assert.Equal(t, "checkout", got[0].Name)
}

func TestRankAccentedIndices(t *testing.T) {
	// Indices address runes so highlights line up on accented names.
	got := Rank("gua", []string{"Água"})

	require.Len(t, got, 1)
	assert.Equal(t, []int{1, 2, 3}, got[0].Indices)
	assert.Equal(t, 99, got[0].Score)
}

func TestRankTieBreakCollation(t *testing.T) {
	// Equal scores fall back to pt-BR collation of the name.
	got := Rank("a", []string{"Ativos", "Análise", "Admin"})

	require.Len(t, got, 3)
	for _, m := range got {
		assert.Equal(t, 100, m.Score)
	}
	assert.Equal(t, []string{"Admin", "Análise", "Ativos"}, names(got))
}

func TestRankCap(t *testing.T) {
	candidates := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		candidates = append(candidates, fmt.Sprintf("team-%03d", i))
	}

	assert.Len(t, Rank("team", candidates), MaxResults)
	assert.Len(t, Rank("", candidates), MaxResults)
}

func TestRankDeterministic(t *testing.T) {
	candidates := []string{"Checkout", "Catalog", "Carrier", "Café", "Cobrança"}

	first := Rank("ca", candidates)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Rank("ca", candidates))
	}
}
