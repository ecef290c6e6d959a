package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Matrix {
	return Matrix{
		{Team: "Billing", Accesses: []Access{
			{System: "Admin VTEX", Classification: "Acesso automático"},
			{System: "Zendesk", Classification: "Mediante request"},
		}},
		{Team: "Dados", Accesses: []Access{{System: "Looker"}}},
	}
}

func TestFind(t *testing.T) {
	m := sample()

	t.Run("resolves case-insensitively", func(t *testing.T) {
		entry, ok := m.Find("billing")
		require.True(t, ok)
		assert.Equal(t, "Billing", entry.Team)

		entry, ok = m.Find("  BILLING  ")
		require.True(t, ok)
		assert.Equal(t, "Billing", entry.Team)
	})

	t.Run("misses unknown and empty names", func(t *testing.T) {
		_, ok := m.Find("checkout")
		assert.False(t, ok)

		_, ok = m.Find("   ")
		assert.False(t, ok)
	})
}

func TestNormalize(t *testing.T) {
	m := Matrix{
		{Team: "Zeta", Accesses: []Access{{System: "Órbita"}, {System: "Admin"}}},
		{Team: "Água"},
		{Team: "Análise"},
	}
	m.Normalize()

	assert.Equal(t, []string{"Água", "Análise", "Zeta"}, m.TeamNames())
	// "Órbita" sorts between "Admin" and nothing under pt-BR rules, so it
	// must not trail as it would with byte comparison.
	assert.Equal(t, "Admin", m[2].Accesses[0].System)
	assert.Equal(t, "Órbita", m[2].Accesses[1].System)
}

func TestClone(t *testing.T) {
	m := sample()
	clone := m.Clone()

	clone[0].Accesses[0].System = "mutated"
	clone[0].Team = "mutated"

	assert.Equal(t, "Admin VTEX", m[0].Accesses[0].System)
	assert.Equal(t, "Billing", m[0].Team)
	assert.Nil(t, Matrix(nil).Clone())
}

func TestAccessCount(t *testing.T) {
	assert.Equal(t, 3, sample().AccessCount())
	assert.Equal(t, 0, Matrix{}.AccessCount())
}

func TestClassifyAccess(t *testing.T) {
	tests := []struct {
		classification string
		want           AccessType
	}{
		{"Acesso automático para o time", AccessAutomatic},
		{"Automatico via SSO", AccessAutomatic},
		{"Mediante request no canal", AccessRequest},
		{"Abrir request para o líder", AccessRequest},
		// Request keywords win over automatic when both appear.
		{"Automático mediante request", AccessRequest},
		{"Gerenciado pelo time de segurança", AccessOther},
		{"", AccessOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyAccess(tt.classification), "classification %q", tt.classification)
	}
}
