package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pubgpt-tui/internal/components/chat"
	"pubgpt-tui/internal/conversation"
	"pubgpt-tui/internal/export"
	"pubgpt-tui/internal/messages"
)

// Update handles all application messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Reserve space for header, input box and status bar.
		chatHeight := msg.Height - 9
		if chatHeight < 5 {
			chatHeight = 5
		}
		m.chat.SetSize(msg.Width, chatHeight)
		m.input.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if m.clarify != nil {
			return m.updateClarify(msg)
		}

		switch msg.String() {
		case "ctrl+c":
			if m.streaming() {
				m.deps.Manager.Cancel()
				m.refreshTranscript()
				return m, m.input.Focus()
			}
			return m, tea.Quit

		case "esc":
			if m.streaming() {
				m.deps.Manager.Cancel()
				m.refreshTranscript()
				return m, m.input.Focus()
			}
			return m, tea.Quit

		case "enter":
			if !m.streaming() && m.input.Value() != "" {
				return m.sendQuestion()
			}

		case "ctrl+s":
			m.chat.ToggleSQL()
			return m, nil

		case "ctrl+e":
			return m, m.exportResults()
		}

	case messages.StreamEventMsg:
		m.deps.Manager.HandleEvent(msg.Conn, msg.Ev)
		m.refreshTranscript()
		if m.deps.Manager.Status() == conversation.StatusAmbiguityPending {
			clarify := chat.NewClarify(m.deps.Manager.Ambiguity(), m.width)
			m.clarify = &clarify
			m.input.Blur()
		}
		return m, nil

	case messages.StreamErrMsg:
		m.deps.Manager.HandleFailure(msg.Conn, msg.Err)
		m.refreshTranscript()
		return m, m.input.Focus()

	case messages.StreamClosedMsg:
		m.deps.Manager.HandleClosed(msg.Conn)
		m.refreshTranscript()
		if !m.streaming() && m.clarify == nil {
			return m, m.input.Focus()
		}
		return m, nil

	case messages.TokenStatsMsg:
		stats := msg.Stats
		m.tokenStats = &stats
		return m, nil

	case messages.ExportDoneMsg:
		m.err = msg.Err
		m.exportPath = msg.Path
		return m, nil
	}

	if !m.streaming() && m.clarify == nil {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) updateClarify(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	clarify, cmd := m.clarify.Update(msg)
	m.clarify = &clarify

	if clarify.Canceled() {
		m.deps.Manager.DismissAmbiguity()
		m.clarify = nil
		m.refreshTranscript()
		return m, m.input.Focus()
	}
	if clarify.Done() {
		sheet := clarify.Sheet()
		m.clarify = nil
		conn, err := m.deps.Manager.Resolve(context.Background(), sheet)
		if err != nil {
			m.err = err
			return m, m.input.Focus()
		}
		m.refreshTranscript()
		return m, m.pump(conn)
	}
	return m, cmd
}

func (m Model) sendQuestion() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return m, nil
	}
	m.input.Clear()
	m.input.Blur()
	m.err = nil
	m.exportPath = ""

	conn, err := m.deps.Manager.Submit(context.Background(), question, conversation.SubmitOptions{
		ChartDemanded: m.deps.ChartDemanded,
	})
	if err != nil {
		m.err = err
		m.refreshTranscript()
		return m, m.input.Focus()
	}

	m.refreshTranscript()
	return m, m.pump(conn)
}

// pump forwards stream traffic into the update loop. Events and errors are
// posted through the program reference so they arrive as ordinary messages.
func (m Model) pump(conn *conversation.Connection) tea.Cmd {
	return func() tea.Msg {
		p := m.shared.GetProgram()
		if p == nil {
			return nil
		}
		go func() {
			for ev := range conn.Events {
				p.Send(messages.StreamEventMsg{Conn: conn, Ev: ev})
			}
			if err := <-conn.Errs; err != nil {
				p.Send(messages.StreamErrMsg{Conn: conn, Err: err})
				return
			}
			p.Send(messages.StreamClosedMsg{Conn: conn})
		}()
		return nil
	}
}

func (m Model) exportResults() tea.Cmd {
	resp := m.deps.Manager.LastResponse()
	if resp == nil || len(resp.QueryResults) == 0 {
		return nil
	}
	rows := resp.QueryResults
	dir := m.deps.ExportDir

	return func() tea.Msg {
		name := fmt.Sprintf("resultats_%s.csv", time.Now().Format("20060102_150405"))
		path := filepath.Join(dir, name)
		if err := export.WriteFile(path, rows); err != nil {
			return messages.ExportDoneMsg{Err: err}
		}
		return messages.ExportDoneMsg{Path: path}
	}
}

func (m Model) streaming() bool {
	switch m.deps.Manager.Status() {
	case conversation.StatusAwaitingFirstEvent, conversation.StatusStreaming:
		return true
	}
	return false
}

func (m *Model) refreshTranscript() {
	m.chat.SetTurns(m.deps.Manager.Turns())
}
