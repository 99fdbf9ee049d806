package protocol

// OtherAnswerPrefix marks a free-text clarification answer, so the backend
// can distinguish it from a predefined choice.
const OtherAnswerPrefix = "Autre: "

// ClarificationQuestion is one question the pipeline asks back when the
// user's question is ambiguous.
type ClarificationQuestion struct {
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
}

// AmbiguityResponse carries the clarification questions. It may arrive as
// the payload of a dedicated ambiguity_detected event or embedded in the
// terminal result payload; Normalize reconciles the two shapes.
type AmbiguityResponse struct {
	HasAmbiguity bool                    `json:"hasAmbiguity"`
	Questions    []ClarificationQuestion `json:"questions"`
}

// ClarificationContext holds the user's answers, keyed by question text.
// It is the payload of the second round trip.
type ClarificationContext struct {
	UserAnswers map[string]string `json:"userAnswers"`
}
