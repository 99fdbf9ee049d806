package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pubgpt-tui/internal/conversation"
	"pubgpt-tui/internal/styles"
)

// ClarifyModel walks the user through the clarification questions one at a
// time. Each question offers its predefined choices plus a free-text entry;
// answering the last question completes the sheet.
type ClarifyModel struct {
	session  *conversation.AmbiguitySession
	sheet    conversation.AnswerSheet
	step     int // current question index
	cursor   int // selected choice; len(choices) selects free text
	input    textinput.Model
	typing   bool
	done     bool
	canceled bool
	width    int
}

func NewClarify(session *conversation.AmbiguitySession, width int) ClarifyModel {
	ti := textinput.New()
	ti.Placeholder = "Votre précision..."
	ti.CharLimit = 200

	return ClarifyModel{
		session: session,
		sheet:   make(conversation.AnswerSheet, len(session.Questions)),
		input:   ti,
		width:   width,
	}
}

// Done reports whether every question has been answered.
func (m ClarifyModel) Done() bool { return m.done }

// Canceled reports whether the user backed out of the dialog.
func (m ClarifyModel) Canceled() bool { return m.canceled }

// Sheet returns the collected answers; meaningful once Done.
func (m ClarifyModel) Sheet() conversation.AnswerSheet { return m.sheet }

func (m ClarifyModel) Update(msg tea.Msg) (ClarifyModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.typing {
		switch key.String() {
		case "enter":
			if strings.TrimSpace(m.input.Value()) != "" {
				m.sheet[m.step] = conversation.Answer{Custom: m.input.Value()}
				m = m.advance()
			}
			return m, nil
		case "esc":
			m.typing = false
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	choices := m.session.Questions[m.step].Choices
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(choices) {
			m.cursor++
		}
	case "enter":
		if m.cursor == len(choices) {
			m.typing = true
			m.input.SetValue("")
			return m, m.input.Focus()
		}
		m.sheet[m.step] = conversation.Answer{Choice: choices[m.cursor]}
		m = m.advance()
	case "esc":
		m.canceled = true
	}

	return m, nil
}

func (m ClarifyModel) advance() ClarifyModel {
	m.typing = false
	m.input.Blur()
	m.cursor = 0
	m.step++
	if m.step >= len(m.session.Questions) {
		m.done = true
		m.step = len(m.session.Questions) - 1
	}
	return m
}

func (m ClarifyModel) View() string {
	q := m.session.Questions[m.step]

	var sb strings.Builder
	sb.WriteString(styles.ClarifyQuestion.Render(
		fmt.Sprintf("Précision %d/%d — %s", m.step+1, len(m.session.Questions), q.Question)))
	sb.WriteString("\n")

	for i, choice := range q.Choices {
		line := "  " + choice
		if i == m.cursor && !m.typing {
			sb.WriteString(styles.ClarifySelected.Render("▸ " + choice))
		} else {
			sb.WriteString(styles.ClarifyChoice.Render(line))
		}
		sb.WriteString("\n")
	}

	if m.typing {
		sb.WriteString(styles.ClarifySelected.Render("▸ Autre: "))
		sb.WriteString(m.input.View())
	} else if m.cursor == len(q.Choices) {
		sb.WriteString(styles.ClarifySelected.Render("▸ Autre..."))
	} else {
		sb.WriteString(styles.ClarifyChoice.Render("  Autre..."))
	}
	sb.WriteString("\n")
	sb.WriteString(styles.StatusBar.Render("↑/↓: choisir • Entrée: valider • Échap: annuler"))

	return sb.String()
}
