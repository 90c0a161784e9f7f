// Package app is the interactive TUI consumer of the stream client.
package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"agnt/internal/anthropic"
	"agnt/internal/components/chat"
	"agnt/internal/components/input"
	"agnt/internal/messages"
	"agnt/internal/sink"
)

// State represents the application state
type State int

const (
	StateIdle State = iota
	StateStreaming
)

// Model is the main application model
type Model struct {
	chat   chat.Model
	input  input.Model
	client *anthropic.Client
	state  State
	width  int
	height int
	ready  bool

	outputDir     string
	codeExecution bool

	containerID     string
	containerExpiry string
	status          string

	ctx     context.Context
	cancel  context.CancelFunc
	events  <-chan anthropic.StreamEvent
	updates chan anthropic.FileUpdate
}

// New creates a new application model
func New(client *anthropic.Client, outputDir string) Model {
	return Model{
		chat:          chat.New(80, 20),
		input:         input.New(80),
		client:        client,
		state:         StateIdle,
		outputDir:     outputDir,
		codeExecution: client.CodeExecutionEnabled(),
		updates:       make(chan anthropic.FileUpdate, anthropic.UpdateBuffer),
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.input.Init(),
		m.chat.Init(),
		waitForUpdate(m.updates),
	)
}

// waitForEvent polls the stream channel; channel close ends the stream.
func waitForEvent(ch <-chan anthropic.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return messages.StreamEndMsg{}
		}
		return eventMsg(ev)
	}
}

// waitForUpdate polls the file-resolution channel. It is re-armed for the
// lifetime of the app; resolution order is independent of the stream.
func waitForUpdate(ch <-chan anthropic.FileUpdate) tea.Cmd {
	return func() tea.Msg {
		up := <-ch
		return messages.FileNameMsg{ID: up.ID, Name: up.Name}
	}
}

// msgSink converts one stream event into its tea message.
type msgSink struct {
	msg tea.Msg
}

func (s *msgSink) Text(text string) {
	s.msg = messages.TextMsg{Text: text}
}

func (s *msgSink) ToolInput(code string) {
	s.msg = messages.CodeInputMsg{Code: code}
}

func (s *msgSink) ToolOutput(out anthropic.ToolOutputEvent) {
	s.msg = messages.CodeOutputMsg{Output: out}
}

func (s *msgSink) ToolError(code string) {
	s.msg = messages.CodeErrorMsg{Code: code}
}

func (s *msgSink) SessionInfo(id, expiresAt string) {
	s.msg = messages.ContainerMsg{ID: id, ExpiresAt: expiresAt}
}

func (s *msgSink) Status(message string) {
	s.msg = messages.StatusMsg{Message: message}
}

func eventMsg(ev anthropic.StreamEvent) tea.Msg {
	var s msgSink
	sink.Dispatch(&s, ev)
	return s.msg
}
