package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pubgpt-tui/internal/answer"
	"pubgpt-tui/internal/checklist"
	"pubgpt-tui/internal/conversation"
	"pubgpt-tui/internal/glossary"
	"pubgpt-tui/internal/protocol"
)

func TestRenderTurnHighlightsGlossaryTerms(t *testing.T) {
	turn := &conversation.Turn{
		Role: conversation.RoleUser,
		Text: "Quel est le budget de la campagne ?",
	}
	gloss := glossary.NewMatcher([]string{"budget", "campagne"})

	out := RenderTurn(turn, 80, false, gloss)
	assert.Contains(t, out, "Vous")
	assert.Contains(t, out, "budget")
	assert.Contains(t, out, "campagne")
}

func TestRenderTurnStreamingShowsChecklist(t *testing.T) {
	turn := &conversation.Turn{
		Role:         conversation.RoleAssistant,
		IsStreaming:  true,
		Checklist:    checklist.Apply(checklist.NewState(), protocol.KindIntent),
		StepMessages: []string{"Analyse de l'intention"},
	}

	out := RenderTurn(turn, 80, false, nil)
	assert.Contains(t, out, checklist.Labels[checklist.PhaseIntent])
}

func TestRenderTurnFinishedShowsSQLOnlyWhenToggled(t *testing.T) {
	turn := &conversation.Turn{
		Role: conversation.RoleAssistant,
		Text: "Voici les résultats.",
		Response: &protocol.ChatResponse{
			GeneratedSQL: "SELECT nom FROM campagne",
		},
		Shape: answer.ShapeText,
	}

	assert.NotContains(t, RenderTurn(turn, 80, false, nil), "SELECT nom FROM campagne")
	assert.Contains(t, RenderTurn(turn, 80, true, nil), "SELECT nom FROM campagne")
}
