package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"agnt/internal/components/chat"
	"agnt/internal/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var sections []string

	header := styles.Header.Render("agnt")
	sections = append(sections, header)

	chatView := m.chat.View()
	if m.chat.IsEmpty() {
		welcomeStyle := lipgloss.NewStyle().
			Foreground(styles.Muted).
			Width(m.width).
			Align(lipgloss.Center).
			Padding(2, 0)
		chatView = welcomeStyle.Render(chat.WelcomeText)
	}
	sections = append(sections, chatView)

	if m.state == StateStreaming {
		waiting := "Waiting for response... (Esc to cancel)"
		if m.status != "" {
			waiting = m.status + " (Esc to cancel)"
		}
		disabledInput := lipgloss.NewStyle().
			Foreground(styles.Muted).
			Italic(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Muted).
			Padding(0, 1).
			Width(m.width - 2).
			Render(waiting)
		sections = append(sections, disabledInput)
	} else {
		sections = append(sections, m.input.View())
	}

	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatusBar renders the status bar at the bottom
func (m Model) renderStatusBar() string {
	var status string
	var statusStyle lipgloss.Style

	switch m.state {
	case StateStreaming:
		status = "Streaming..."
		statusStyle = styles.StatusBarStreaming
	default:
		status = "Ready"
		statusStyle = styles.StatusBar
	}

	if m.codeExecution {
		status += " • code execution on"
		if m.containerID != "" {
			status += fmt.Sprintf(" • container %s (expires %s)", m.containerID, m.containerExpiry)
		}
	}

	left := statusStyle.Render(status)
	help := styles.StatusBar.Render("Enter: send • Ctrl+X: code exec • Ctrl+L: clear • Ctrl+C: quit")

	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(help)
	spacerWidth := m.width - leftWidth - rightWidth - 2
	if spacerWidth < 0 {
		spacerWidth = 0
	}
	spacer := strings.Repeat(" ", spacerWidth)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, spacer, help)
}
