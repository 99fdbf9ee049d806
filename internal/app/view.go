package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pubgpt-tui/internal/conversation"
	"pubgpt-tui/internal/styles"
)

const welcomeText = `Bienvenue sur pubGPT !

Posez une question sur vos données publicitaires et
suivez l'avancement de l'analyse étape par étape.

Essayez :
• "Quel est le budget total des campagnes ?"
• "Analyse orchestrée des budgets par chaîne"
• Ctrl+S : afficher le SQL généré • Ctrl+E : exporter en CSV`

// View renders the application.
func (m Model) View() string {
	if !m.ready {
		return "Initialisation..."
	}

	var sections []string

	sections = append(sections, styles.Header.Render("pubGPT"))

	chatView := m.chat.View()
	if m.chat.IsEmpty() {
		welcomeStyle := lipgloss.NewStyle().
			Foreground(styles.Muted).
			Width(m.width).
			Align(lipgloss.Center).
			Padding(2, 0)
		chatView = welcomeStyle.Render(welcomeText)
	}
	sections = append(sections, chatView)

	switch {
	case m.clarify != nil:
		sections = append(sections, m.clarify.View())
	case m.streaming():
		waiting := lipgloss.NewStyle().
			Foreground(styles.Muted).
			Italic(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Muted).
			Padding(0, 1).
			Width(m.width - 2).
			Render("Analyse en cours... (Échap pour annuler)")
		sections = append(sections, waiting)
	default:
		sections = append(sections, m.input.View())
	}

	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatusBar() string {
	var status string
	style := styles.StatusBar

	switch {
	case m.err != nil:
		status = fmt.Sprintf("Erreur: %v", m.err)
		style = styles.StatusBarError
	case m.exportPath != "":
		status = "Exporté vers " + m.exportPath
	case m.clarify != nil:
		status = "Précisions demandées"
		style = styles.StatusBarStreaming
	case m.streaming():
		status = "Analyse en cours..."
		style = styles.StatusBarStreaming
	case m.deps.Manager.Status() == conversation.StatusFailed:
		status = "Échec"
		style = styles.StatusBarError
	default:
		status = "Prêt"
	}

	left := style.Render(status)

	var right string
	if m.tokenStats != nil {
		right = styles.StatusBar.Render(fmt.Sprintf(
			"Jetons: %d/%d (%.0f%%)",
			m.tokenStats.TotalTokensConsumed,
			m.tokenStats.MaxTokensAllowed,
			m.tokenStats.UsagePercentage,
		))
	} else {
		right = styles.StatusBar.Render("Entrée: envoyer • Ctrl+C: quitter")
	}

	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	spacerWidth := m.width - leftWidth - rightWidth - 2
	if spacerWidth < 0 {
		spacerWidth = 0
	}
	spacer := strings.Repeat(" ", spacerWidth)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, spacer, right)
}
