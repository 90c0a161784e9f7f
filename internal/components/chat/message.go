package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"agnt/internal/anthropic"
	"agnt/internal/styles"
)

// Role represents who sent the message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Item is one renderable unit in the transcript: a text message, a code
// block the model ran, its output, or an execution error.
type Item interface {
	Render(width int) string
}

// Message represents a chat text message
type Message struct {
	Role        Role
	Content     string
	IsStreaming bool
}

// Render renders a message with the given width
func (m *Message) Render(width int) string {
	var sb strings.Builder

	switch m.Role {
	case RoleUser:
		sb.WriteString(styles.UserLabel.Render("You"))
		sb.WriteString("\n")
	case RoleAssistant:
		sb.WriteString(styles.AssistantLabel.Render("Claude"))
		sb.WriteString("\n")
	}

	content := m.Content
	if m.Role == RoleAssistant && content != "" && !m.IsStreaming {
		// Use glamour for markdown rendering once the text settles;
		// re-rendering markdown on every delta flickers badly.
		rendered, err := renderMarkdown(content, width-4)
		if err == nil {
			content = strings.TrimSpace(rendered)
		}
	}

	if m.IsStreaming {
		content += styles.StreamingCursor.Render("▊")
	}

	switch m.Role {
	case RoleUser:
		sb.WriteString(styles.UserMessage.Width(width - 2).Render(content))
	default:
		sb.WriteString(styles.AssistantMessage.Width(width - 2).Render(content))
	}

	return sb.String()
}

// CodeBlock is code the model submitted for execution.
type CodeBlock struct {
	Code string
}

func (c *CodeBlock) Render(width int) string {
	label := styles.CodeLabel.Render("⚙ code execution")
	body := styles.CodeBlock.Width(width - 4).Render(c.Code)
	return label + "\n" + body
}

// OutputBlock is the result of an executed code block, including any files
// it created. File display names start as raw IDs and are replaced when
// the resolver reports real names.
type OutputBlock struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Files    []anthropic.FileRef
}

func (o *OutputBlock) Render(width int) string {
	var parts []string
	if o.Stdout != "" {
		parts = append(parts, styles.OutputBlock.Width(width-4).Render(strings.TrimRight(o.Stdout, "\n")))
	}
	if o.Stderr != "" {
		parts = append(parts, styles.OutputError.Width(width-4).Render(strings.TrimRight(o.Stderr, "\n")))
	}
	if o.ExitCode != 0 {
		parts = append(parts, styles.OutputError.Render(fmt.Sprintf("(exit code %d)", o.ExitCode)))
	}
	for _, f := range o.Files {
		parts = append(parts, styles.FileEntry.Render("⬇ "+f.DisplayName))
	}
	if len(parts) == 0 {
		parts = append(parts, styles.OutputBlock.Render("(no output)"))
	}
	return strings.Join(parts, "\n")
}

// ErrorBlock is a failed code execution.
type ErrorBlock struct {
	Code string
}

func (e *ErrorBlock) Render(width int) string {
	return styles.OutputError.Render("✗ code execution failed: " + e.Code)
}

// renderMarkdown renders markdown content for the terminal
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

// WelcomeText is shown before the first message.
const WelcomeText = "Ask Claude anything.\nCtrl+X toggles code execution; generated files land in the output directory."
