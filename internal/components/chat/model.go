package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"agnt/internal/anthropic"
)

// Model represents the chat transcript component
type Model struct {
	viewport  viewport.Model
	items     []Item
	streaming bool
	width     int
	height    int
	ready     bool
}

// New creates a new chat model
func New(width, height int) Model {
	vp := viewport.New(width, height)
	vp.SetContent("")

	return Model{
		viewport: vp,
		width:    width,
		height:   height,
		ready:    true,
	}
}

// Init initializes the chat component
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the chat component
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

// View renders the chat component
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.viewport.View()
}

// SetSize resizes the viewport
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.updateContent()
}

// IsEmpty reports whether the transcript has no items yet
func (m Model) IsEmpty() bool {
	return len(m.items) == 0
}

// Clear drops the transcript
func (m *Model) Clear() {
	m.items = nil
	m.streaming = false
	m.updateContent()
}

// AddUserMessage appends a user message
func (m *Model) AddUserMessage(content string) {
	m.items = append(m.items, &Message{Role: RoleUser, Content: content})
	m.updateContent()
}

// StartAssistantMessage begins a streaming assistant reply
func (m *Model) StartAssistantMessage() {
	m.streaming = true
}

// AppendText appends streamed text to the current assistant segment,
// starting a new one after a code/output block interrupted the text.
func (m *Model) AppendText(text string) {
	if m.streaming {
		if last, ok := m.lastItem().(*Message); ok && last.Role == RoleAssistant && last.IsStreaming {
			last.Content += text
			m.updateContent()
			return
		}
	}
	m.items = append(m.items, &Message{Role: RoleAssistant, Content: text, IsStreaming: m.streaming})
	m.updateContent()
}

// AddCodeBlock appends an executed-code item
func (m *Model) AddCodeBlock(code string) {
	m.endTextSegment()
	m.items = append(m.items, &CodeBlock{Code: code})
	m.updateContent()
}

// AddOutput appends a code execution result
func (m *Model) AddOutput(out anthropic.ToolOutputEvent) {
	m.endTextSegment()
	m.items = append(m.items, &OutputBlock{
		Stdout:   out.Stdout,
		Stderr:   out.Stderr,
		ExitCode: out.ExitCode,
		Files:    append([]anthropic.FileRef(nil), out.Files...),
	})
	m.updateContent()
}

// AddError appends a code execution failure
func (m *Model) AddError(code string) {
	m.endTextSegment()
	m.items = append(m.items, &ErrorBlock{Code: code})
	m.updateContent()
}

// EndAssistantMessage finalizes the streaming reply
func (m *Model) EndAssistantMessage() {
	m.streaming = false
	m.endTextSegment()
	m.updateContent()
}

// UpdateFileName replaces the display name of a file wherever it appears
func (m *Model) UpdateFileName(id, name string) {
	for _, item := range m.items {
		out, ok := item.(*OutputBlock)
		if !ok {
			continue
		}
		for i := range out.Files {
			if out.Files[i].ID == id {
				out.Files[i].DisplayName = name
			}
		}
	}
	m.updateContent()
}

// History rebuilds the conversation as API messages. Code and output
// blocks are display-only and excluded.
func (m Model) History() []anthropic.Message {
	var history []anthropic.Message
	for _, item := range m.items {
		msg, ok := item.(*Message)
		if !ok || msg.Content == "" {
			continue
		}
		history = append(history, anthropic.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return history
}

func (m *Model) lastItem() Item {
	if len(m.items) == 0 {
		return nil
	}
	return m.items[len(m.items)-1]
}

func (m *Model) endTextSegment() {
	if last, ok := m.lastItem().(*Message); ok && last.IsStreaming {
		last.IsStreaming = false
	}
}

// updateContent re-renders all items into the viewport
func (m *Model) updateContent() {
	atBottom := m.viewport.AtBottom()

	var sb strings.Builder
	for i, item := range m.items {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(item.Render(m.width))
	}
	m.viewport.SetContent(sb.String())

	// Follow the stream unless the user scrolled back.
	if atBottom || m.streaming {
		m.viewport.GotoBottom()
	}
}
