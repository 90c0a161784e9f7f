// Package messages defines the bubbletea messages the TUI consumes.
package messages

import "agnt/internal/anthropic"

// Stream events bridged from the client channel
type TextMsg struct {
	Text string
}

type CodeInputMsg struct {
	Code string
}

type CodeOutputMsg struct {
	Output anthropic.ToolOutputEvent
}

type CodeErrorMsg struct {
	Code string
}

type ContainerMsg struct {
	ID        string
	ExpiresAt string
}

type StatusMsg struct {
	Message string
}

// FileNameMsg reports a resolved display name from the updates channel.
type FileNameMsg struct {
	ID   string
	Name string
}

// Internal app messages
type StreamEndMsg struct{}
