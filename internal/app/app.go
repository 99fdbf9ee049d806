package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"pubgpt-tui/internal/components/chat"
	"pubgpt-tui/internal/components/input"
	"pubgpt-tui/internal/conversation"
	"pubgpt-tui/internal/logging"
	"pubgpt-tui/internal/tokens"
)

// SharedState holds state that needs to be shared between model copies.
type SharedState struct {
	mu      sync.Mutex
	program *tea.Program
}

func (s *SharedState) SetProgram(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = p
}

func (s *SharedState) GetProgram() *tea.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program
}

// Deps are the pieces the app wires together. Token statistics arrive as
// messages from the poller started in main, not through a client held here.
type Deps struct {
	Manager *conversation.Manager
	Logger  *logging.Logger

	// ChartDemanded asks the backend to suggest a visualization with each
	// answer.
	ChartDemanded bool
	// ExportDir receives CSV exports; empty means the working directory.
	ExportDir string
}

// Model is the main application model.
type Model struct {
	chat    chat.Model
	input   input.Model
	clarify *chat.ClarifyModel
	deps    Deps
	shared  *SharedState

	tokenStats *tokens.Stats
	exportPath string
	width      int
	height     int
	err        error
	ready      bool
}

func New(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	return Model{
		chat:   chat.New(80, 20),
		input:  input.New(80),
		deps:   deps,
		shared: &SharedState{},
	}
}

// SetProgram sets the tea.Program reference so stream goroutines can post
// messages back into the update loop.
func (m *Model) SetProgram(p *tea.Program) {
	m.shared.SetProgram(p)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.input.Init(),
		m.chat.Init(),
	)
}
