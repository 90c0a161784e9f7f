package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary     = lipgloss.Color("#7C3AED")
	Secondary   = lipgloss.Color("#10B981")
	Error       = lipgloss.Color("#EF4444")
	Muted       = lipgloss.Color("#6B7280")
	White       = lipgloss.Color("#FFFFFF")
	LightGray   = lipgloss.Color("#E5E7EB")
	CodeBg      = lipgloss.Color("#1F2937")

	// Header
	Header = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true).
		Padding(0, 1)

	// Message Styles
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

	StreamingCursor = lipgloss.NewStyle().
			Foreground(Secondary)

	// Code execution styles
	CodeBlock = lipgloss.NewStyle().
			Background(CodeBg).
			Foreground(LightGray).
			Padding(0, 1).
			MarginLeft(2)

	CodeLabel = lipgloss.NewStyle().
			Foreground(Primary).
			Italic(true).
			MarginLeft(2)

	OutputBlock = lipgloss.NewStyle().
			Foreground(LightGray).
			MarginLeft(2)

	OutputError = lipgloss.NewStyle().
			Foreground(Error).
			MarginLeft(2)

	FileEntry = lipgloss.NewStyle().
			Foreground(Secondary).
			MarginLeft(4)

	// Input Styles
	InputBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	// Status Bar Styles
	StatusBar = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	StatusBarStreaming = lipgloss.NewStyle().
				Foreground(Primary).
				Padding(0, 1)

	StatusBarError = lipgloss.NewStyle().
			Foreground(Error).
			Padding(0, 1)
)
