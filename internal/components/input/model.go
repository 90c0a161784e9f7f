package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"agnt/internal/styles"
)

// Model wraps a textarea for the message prompt
type Model struct {
	textarea textarea.Model
	width    int
}

// New creates a new input model
func New(width int) Model {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Prompt = "┃ "
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(width - 4)
	ta.Focus()

	return Model{
		textarea: ta,
		width:    width,
	}
}

// Init initializes the input component
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the input component
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// View renders the input component
func (m Model) View() string {
	return styles.InputBorder.Width(m.width - 2).Render(m.textarea.View())
}

// Value returns the trimmed input text
func (m Model) Value() string {
	return strings.TrimSpace(m.textarea.Value())
}

// Clear resets the input
func (m *Model) Clear() {
	m.textarea.Reset()
}

// InsertNewline inserts a line break at the cursor
func (m *Model) InsertNewline() {
	m.textarea.InsertString("\n")
}

// Focus focuses the input and returns the blink command
func (m *Model) Focus() tea.Cmd {
	return m.textarea.Focus()
}

// Blur removes focus
func (m *Model) Blur() {
	m.textarea.Blur()
}

// SetWidth resizes the input
func (m *Model) SetWidth(width int) {
	m.width = width
	m.textarea.SetWidth(width - 4)
}
