package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"pubgpt-tui/internal/conversation"
	"pubgpt-tui/internal/glossary"
)

// Model renders the conversation transcript in a scrollable viewport.
type Model struct {
	viewport viewport.Model
	turns    []*conversation.Turn
	gloss    *glossary.Matcher
	showSQL  bool
	width    int
	height   int
	ready    bool
}

func New(width, height int) Model {
	vp := viewport.New(width, height)
	vp.SetContent("")
	vp.YPosition = 0

	return Model{
		viewport: vp,
		gloss:    glossary.NewMatcher(nil),
		width:    width,
		height:   height,
		ready:    true,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			m.viewport.ViewUp()
		case "pgdown":
			m.viewport.ViewDown()
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Initialisation..."
	}
	return m.viewport.View()
}

// SetTurns replaces the transcript. The conversation manager owns turn
// state; the component only renders the current snapshot.
func (m *Model) SetTurns(turns []*conversation.Turn) {
	m.turns = turns
	m.updateContent()
}

// ToggleSQL flips the SQL inspector for finished turns.
func (m *Model) ToggleSQL() {
	m.showSQL = !m.showSQL
	m.updateContent()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.updateContent()
}

func (m *Model) updateContent() {
	var content strings.Builder

	for i, t := range m.turns {
		content.WriteString(RenderTurn(t, m.width, m.showSQL, m.gloss))
		if i < len(m.turns)-1 {
			content.WriteString("\n\n")
		}
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m Model) IsEmpty() bool {
	return len(m.turns) == 0
}
