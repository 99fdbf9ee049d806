package input

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"pubgpt-tui/internal/styles"
)

// Model wraps the question entry box.
type Model struct {
	area  textarea.Model
	width int
}

func New(width int) Model {
	ta := textarea.New()
	ta.Placeholder = "Posez votre question..."
	ta.CharLimit = 500
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	return Model{area: ta, width: width}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return styles.InputBorder.Width(m.width - 2).Render(m.area.View())
}

func (m Model) Value() string {
	return m.area.Value()
}

func (m *Model) Clear() {
	m.area.Reset()
}

func (m *Model) Focus() tea.Cmd {
	return m.area.Focus()
}

func (m *Model) Blur() {
	m.area.Blur()
}

func (m *Model) SetWidth(width int) {
	m.width = width
	m.area.SetWidth(width - 4)
}
