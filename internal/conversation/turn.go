package conversation

import (
	"time"

	"github.com/google/uuid"

	"pubgpt-tui/internal/answer"
	"pubgpt-tui/internal/checklist"
	"pubgpt-tui/internal/protocol"
)

// Role distinguishes the two sides of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the conversation plus, for assistant turns, all
// state derived from the event stream. A turn is created when its content is
// first known: the user turn at submission, the assistant turn at the first
// non-session event. Only the Manager mutates a turn.
type Turn struct {
	ID        string
	Role      Role
	Text      string
	Timestamp time.Time

	// Streaming state, assistant turns only.
	IsStreaming  bool
	Checklist    checklist.State
	ViewMode     checklist.ViewMode
	Reasoning    string   // latest orchestrator reasoning text
	StepMessages []string // human-readable progress lines, in arrival order

	// Final state, populated at terminal result.
	Response *protocol.ChatResponse
	Rows     []map[string]any
	Chart    *protocol.ChartData
	Shape    answer.Shape

	finished bool
}

func newUserTurn(text string) *Turn {
	return &Turn{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Text:      text,
		Timestamp: time.Now(),
	}
}

func newAssistantTurn() *Turn {
	return &Turn{
		ID:          uuid.NewString(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
		Checklist:   checklist.NewState(),
	}
}

// finish clears IsStreaming exactly once; later calls are no-ops so no event
// ordering can flip a settled turn back to streaming.
func (t *Turn) finish() {
	if t == nil || t.finished {
		return
	}
	t.finished = true
	t.IsStreaming = false
}

// HasTable reports whether the turn carries tabular results.
func (t *Turn) HasTable() bool {
	return t != nil && len(t.Rows) > 0
}

// PlannerVisible reports whether the planner refinement should be shown.
func (t *Turn) PlannerVisible() bool {
	return t != nil && t.Checklist != nil && checklist.PlannerActive(t.Checklist)
}
