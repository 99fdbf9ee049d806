package conversation

import (
	"strings"

	"pubgpt-tui/internal/protocol"
)

// AmbiguitySession holds the pending clarification exchange for one
// question. At most one exists per conversation; it lives from the
// ambiguity outcome until the user answers or cancels.
type AmbiguitySession struct {
	OriginalQuestion string
	Questions        []protocol.ClarificationQuestion
}

// Answer is the user's response to one clarification question: either a
// predefined choice or free text.
type Answer struct {
	Choice string
	Custom string
}

// AnswerSheet collects the per-question answers in question order.
type AnswerSheet []Answer

// Complete reports whether every question has a usable answer.
func (s AnswerSheet) Complete() bool {
	for _, a := range s {
		if a.Choice == "" && strings.TrimSpace(a.Custom) == "" {
			return false
		}
	}
	return len(s) > 0
}

// Context builds the ClarificationContext sent on the second round trip.
// Free-text answers are prefixed so the backend can tell them apart from
// predefined choices.
func (s AnswerSheet) Context(questions []protocol.ClarificationQuestion) *protocol.ClarificationContext {
	answers := make(map[string]string, len(questions))
	for i, q := range questions {
		if i >= len(s) {
			break
		}
		a := s[i]
		if custom := strings.TrimSpace(a.Custom); custom != "" {
			answers[q.Question] = protocol.OtherAnswerPrefix + custom
		} else if a.Choice != "" {
			answers[q.Question] = a.Choice
		}
	}
	return &protocol.ClarificationContext{UserAnswers: answers}
}
