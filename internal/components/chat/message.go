package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"pubgpt-tui/internal/answer"
	"pubgpt-tui/internal/conversation"
	"pubgpt-tui/internal/export"
	"pubgpt-tui/internal/glossary"
	"pubgpt-tui/internal/styles"
)

const maxTableRows = 10

// RenderTurn draws one conversation turn. Streaming assistant turns show the
// progress checklist; finished ones show the answer, the result table when
// rows came back, and the generated SQL when the inspector is open.
func RenderTurn(t *conversation.Turn, width int, showSQL bool, gloss *glossary.Matcher) string {
	var sb strings.Builder

	switch t.Role {
	case conversation.RoleUser:
		sb.WriteString(styles.UserLabel.Render("Vous"))
		sb.WriteString("\n")
		text := t.Text
		if gloss != nil {
			text = gloss.Emphasize(text, func(s string) string {
				return styles.GlossaryTerm.Render(s)
			})
		}
		sb.WriteString(styles.UserMessage.Width(width - 2).Render(text))

	case conversation.RoleAssistant:
		sb.WriteString(styles.AssistantLabel.Render("Assistant"))
		sb.WriteString("\n")

		if t.IsStreaming {
			sb.WriteString(RenderChecklist(t.Checklist, t.ViewMode))
			if t.Reasoning != "" {
				sb.WriteString("\n")
				sb.WriteString(styles.Reasoning.Width(width - 4).Render(t.Reasoning))
			}
			if n := len(t.StepMessages); n > 0 {
				sb.WriteString("\n")
				sb.WriteString(styles.StatusBar.Render(t.StepMessages[n-1]))
			}
			break
		}

		content := t.Text
		if rendered, err := renderMarkdown(content, width-4); err == nil {
			content = strings.TrimSpace(rendered)
		}
		sb.WriteString(styles.AssistantMessage.Width(width - 2).Render(content))

		if t.Shape == answer.ShapeTable && t.HasTable() {
			sb.WriteString("\n")
			sb.WriteString(renderTable(t.Rows, width))
		}
		if t.Chart != nil {
			sb.WriteString("\n")
			sb.WriteString(styles.StatusBar.Render(
				fmt.Sprintf("Graphique disponible (%s)", t.Chart.Visualization.Type)))
		}
		if showSQL && t.Response != nil && t.Response.GeneratedSQL != "" {
			sb.WriteString("\n")
			sb.WriteString(styles.SQLBlock.Render(t.Response.GeneratedSQL))
		}
		if t.Response != nil && t.Response.ConfidenceScore != nil {
			sb.WriteString("\n")
			sb.WriteString(styles.StatusBar.Render(
				fmt.Sprintf("Confiance: %.0f%%", t.Response.ConfidenceScore.GlobalScore*100)))
		}
	}

	return sb.String()
}

// renderTable lays out query rows in fixed-width columns, truncated to the
// first rows so long results stay scannable; the full set goes to CSV export.
func renderTable(rows []map[string]any, width int) string {
	headers := export.Headers(rows)
	if len(headers) == 0 {
		return ""
	}

	widths := make(map[string]int, len(headers))
	for _, h := range headers {
		widths[h] = len(h)
	}
	shown := rows
	if len(shown) > maxTableRows {
		shown = shown[:maxTableRows]
	}
	for _, row := range shown {
		for _, h := range headers {
			if c := cell(row[h]); len(c) > widths[h] {
				widths[h] = len(c)
			}
		}
	}

	var sb strings.Builder
	var headerCells []string
	for _, h := range headers {
		headerCells = append(headerCells, pad(h, widths[h]))
	}
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(strings.Join(headerCells, "  ")))
	sb.WriteString("\n")

	for _, row := range shown {
		var cells []string
		for _, h := range headers {
			cells = append(cells, pad(cell(row[h]), widths[h]))
		}
		sb.WriteString(strings.Join(cells, "  "))
		sb.WriteString("\n")
	}
	if len(rows) > maxTableRows {
		sb.WriteString(styles.StatusBar.Render(
			fmt.Sprintf("… %d lignes au total (Ctrl+E pour exporter)", len(rows))))
	}

	return lipgloss.NewStyle().PaddingLeft(2).Render(strings.TrimRight(sb.String(), "\n"))
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

func renderMarkdown(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content, err
	}
	return r.Render(content)
}
