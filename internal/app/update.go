package app

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"agnt/internal/anthropic"
	"agnt/internal/messages"
)

// Update handles all application messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Reserve space for: header (1), input (5), status bar (1), padding (2)
		chatHeight := msg.Height - 9
		if chatHeight < 5 {
			chatHeight = 5
		}
		m.chat.SetSize(msg.Width, chatHeight)
		m.input.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.state == StateStreaming {
				return m.cancelStream()
			}
			return m, tea.Quit

		case "esc":
			if m.state == StateStreaming {
				return m.cancelStream()
			}
			return m, tea.Quit

		case "enter":
			if m.state != StateStreaming && m.input.Value() != "" {
				return m.sendMessage()
			}

		case "alt+enter":
			if m.state != StateStreaming {
				m.input.InsertNewline()
			}
			return m, nil

		case "ctrl+x":
			if m.state != StateStreaming {
				m.codeExecution = !m.codeExecution
			}
			return m, nil

		case "ctrl+l":
			m.chat.Clear()
			return m, nil
		}

	// Stream events
	case messages.StatusMsg:
		m.status = msg.Message
		return m, waitForEvent(m.events)

	case messages.ContainerMsg:
		m.containerID = msg.ID
		m.containerExpiry = msg.ExpiresAt
		return m, waitForEvent(m.events)

	case messages.TextMsg:
		m.chat.AppendText(msg.Text)
		return m, waitForEvent(m.events)

	case messages.CodeInputMsg:
		m.chat.AddCodeBlock(msg.Code)
		return m, waitForEvent(m.events)

	case messages.CodeOutputMsg:
		m.chat.AddOutput(msg.Output)
		m.startDownloads(msg.Output.Files)
		return m, waitForEvent(m.events)

	case messages.CodeErrorMsg:
		m.chat.AddError(msg.Code)
		return m, waitForEvent(m.events)

	case messages.FileNameMsg:
		m.chat.UpdateFileName(msg.ID, msg.Name)
		return m, waitForUpdate(m.updates)

	case messages.StreamEndMsg:
		if m.state == StateStreaming {
			m.chat.EndAssistantMessage()
			m.state = StateIdle
			m.status = ""
		}
		return m, m.input.Focus()
	}

	// Update child components when idle
	if m.state != StateStreaming {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Always allow chat scrolling
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// sendMessage starts a new streaming exchange from the current input
func (m Model) sendMessage() (tea.Model, tea.Cmd) {
	content := m.input.Value()

	m.chat.AddUserMessage(content)
	m.input.Clear()
	m.input.Blur()

	// The rebuilt history already includes the message just added.
	history := m.chat.History()

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.state = StateStreaming
	m.status = ""
	m.chat.StartAssistantMessage()

	client := m.client.WithCodeExecutionEnabled(m.codeExecution)
	m.events = client.StreamMessage(m.ctx, history)

	return m, waitForEvent(m.events)
}

// cancelStream trips the cancellation context; the stream task notices at
// its next read boundary and closes the channel.
func (m Model) cancelStream() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.state = StateIdle
	m.status = ""
	m.chat.EndAssistantMessage()
	return m, m.input.Focus()
}

// startDownloads spawns one resolver task per downloadable file so a slow
// fetch never stalls the stream.
func (m *Model) startDownloads(files []anthropic.FileRef) {
	for _, f := range files {
		if !strings.HasPrefix(f.ID, "file_") {
			continue
		}
		id := f.ID
		go func() {
			// Detached from the stream context: cancelling a reply must
			// not abort a download already underway.
			_ = m.client.DownloadAndSaveFile(context.Background(), m.outputDir, id, m.updates)
		}()
	}
}
