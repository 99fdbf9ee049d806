package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary     = lipgloss.Color("#2563EB")
	Secondary   = lipgloss.Color("#10B981")
	Error       = lipgloss.Color("#EF4444")
	Warning     = lipgloss.Color("#F59E0B")
	Muted       = lipgloss.Color("#6B7280")
	White       = lipgloss.Color("#FFFFFF")
	LightGray   = lipgloss.Color("#E5E7EB")
	AssistantBg = lipgloss.Color("#1F2937")

	// Message styles
	UserMessage = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(White).
			Bold(true)

	UserLabel = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	AssistantMessage = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(LightGray)

	AssistantLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Checklist styles
	StepPending = lipgloss.NewStyle().
			Foreground(Muted).
			PaddingLeft(2)

	StepActive = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			PaddingLeft(2)

	StepDone = lipgloss.NewStyle().
			Foreground(Secondary).
			PaddingLeft(2)

	StepSkipped = lipgloss.NewStyle().
			Foreground(Muted).
			Strikethrough(true).
			PaddingLeft(2)

	SubStep = lipgloss.NewStyle().
		PaddingLeft(4)

	Reasoning = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			PaddingLeft(2)

	// SQL and results
	SQLBlock = lipgloss.NewStyle().
			Foreground(Warning).
			Padding(0, 2)

	GlossaryTerm = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Clarification dialog
	ClarifyQuestion = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true).
			Padding(0, 1)

	ClarifyChoice = lipgloss.NewStyle().
			Foreground(LightGray).
			PaddingLeft(2)

	ClarifySelected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			PaddingLeft(2)

	// Input styles
	InputBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	// Status bar styles
	StatusBar = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	StatusBarStreaming = lipgloss.NewStyle().
				Foreground(Primary).
				Padding(0, 1)

	StatusBarError = lipgloss.NewStyle().
			Foreground(Error).
			Padding(0, 1)

	// Header
	Header = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true).
		Padding(0, 1)
)
