package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubgpt-tui/internal/conversation"
	"pubgpt-tui/internal/protocol"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func twoQuestionSession() *conversation.AmbiguitySession {
	return &conversation.AmbiguitySession{
		OriginalQuestion: "Quel budget ?",
		Questions: []protocol.ClarificationQuestion{
			{Question: "Quelle période ?", Choices: []string{"2024", "2025"}},
			{Question: "Quel périmètre ?", Choices: []string{"National"}},
		},
	}
}

func TestClarifyChoiceSelection(t *testing.T) {
	m := NewClarify(twoQuestionSession(), 80)

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter"))
	require.False(t, m.Done())

	m, _ = m.Update(key("enter"))
	require.True(t, m.Done())

	sheet := m.Sheet()
	require.True(t, sheet.Complete())
	assert.Equal(t, "2025", sheet[0].Choice)
	assert.Equal(t, "National", sheet[1].Choice)
}

func TestClarifyFreeTextAnswer(t *testing.T) {
	m := NewClarify(twoQuestionSession(), 80)

	// Move past both choices onto the free-text entry.
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter"))
	require.True(t, m.typing)

	m, _ = m.Update(key("T3 2025"))
	m, _ = m.Update(key("enter"))
	require.False(t, m.Done())
	assert.Equal(t, "T3 2025", m.Sheet()[0].Custom)
}

func TestClarifyEmptyFreeTextRejected(t *testing.T) {
	m := NewClarify(twoQuestionSession(), 80)

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter"))
	m, _ = m.Update(key("enter"))

	assert.False(t, m.Done())
	assert.True(t, m.typing)
}

func TestClarifyEscapeCancels(t *testing.T) {
	m := NewClarify(twoQuestionSession(), 80)

	m, _ = m.Update(key("esc"))
	assert.True(t, m.Canceled())
}

func TestClarifySheetBuildsContext(t *testing.T) {
	session := twoQuestionSession()
	m := NewClarify(session, 80)

	m, _ = m.Update(key("enter")) // 2024
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("enter")) // free text
	m, _ = m.Update(key("précision libre"))
	m, _ = m.Update(key("enter"))
	require.True(t, m.Done())

	ctx := m.Sheet().Context(session.Questions)
	assert.Equal(t, "2024", ctx.UserAnswers["Quelle période ?"])
	assert.Equal(t, protocol.OtherAnswerPrefix+"précision libre", ctx.UserAnswers["Quel périmètre ?"])
}
