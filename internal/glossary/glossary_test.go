package glossary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCaseAndAccentInsensitive(t *testing.T) {
	m := NewMatcher([]string{"chaîne", "budget"})

	ranges := m.Find("Quel BUDGET pour cette chaine ?")
	require.Len(t, ranges, 2)

	text := "Quel BUDGET pour cette chaine ?"
	assert.Equal(t, "BUDGET", text[ranges[0].Start:ranges[0].End])
	assert.Equal(t, "chaine", text[ranges[1].Start:ranges[1].End])
}

func TestFindWordBoundaries(t *testing.T) {
	m := NewMatcher([]string{"spot"})

	assert.Empty(t, m.Find("despotique"))
	assert.Len(t, m.Find("un spot diffusé"), 1)
	assert.Len(t, m.Find("spot"), 1)
}

func TestFindFrenchPlural(t *testing.T) {
	m := NewMatcher([]string{"campagne", "tranche horaire"})

	text := "les campagnes par tranche horaire"
	ranges := m.Find(text)
	require.Len(t, ranges, 2)
	assert.Equal(t, "campagnes", text[ranges[0].Start:ranges[0].End])
	assert.Equal(t, "tranche horaire", text[ranges[1].Start:ranges[1].End])
}

func TestFindLongestTermWins(t *testing.T) {
	m := NewMatcher([]string{"écran", "écran publicitaire"})

	text := "un écran publicitaire en soirée"
	ranges := m.Find(text)
	require.Len(t, ranges, 1)
	assert.Equal(t, "écran publicitaire", text[ranges[0].Start:ranges[0].End])
}

func TestFindAccentedOriginalOffsets(t *testing.T) {
	m := NewMatcher([]string{"chaîne"})

	text := "la chaîne préférée"
	ranges := m.Find(text)
	require.Len(t, ranges, 1)
	assert.Equal(t, "chaîne", text[ranges[0].Start:ranges[0].End])
}

func TestEmphasize(t *testing.T) {
	m := NewMatcher([]string{"budget"})

	out := m.Emphasize("le budget total", func(s string) string {
		return "<" + s + ">"
	})
	assert.Equal(t, "le <budget> total", out)
}

func TestEmphasizeNoMatchReturnsInput(t *testing.T) {
	m := NewMatcher(nil)
	assert.Equal(t, "rien ici", m.Emphasize("rien ici", func(s string) string {
		return "!" + s + "!"
	}))
}
