// Package sink defines the consumer-side contract for stream events, so
// the pipe and interactive front ends share one dispatch instead of two
// hand-rolled switch loops.
package sink

import "agnt/internal/anthropic"

// Sink handles decoded stream events, one method per variant.
type Sink interface {
	Text(text string)
	ToolInput(code string)
	ToolOutput(out anthropic.ToolOutputEvent)
	ToolError(code string)
	SessionInfo(id, expiresAt string)
	Status(message string)
}

// Dispatch routes one event to the matching sink method.
func Dispatch(s Sink, ev anthropic.StreamEvent) {
	switch ev := ev.(type) {
	case anthropic.TextEvent:
		s.Text(ev.Text)
	case anthropic.ToolInputEvent:
		s.ToolInput(ev.Code)
	case anthropic.ToolOutputEvent:
		s.ToolOutput(ev)
	case anthropic.ToolErrorEvent:
		s.ToolError(ev.Code)
	case anthropic.SessionInfoEvent:
		s.SessionInfo(ev.ID, ev.ExpiresAt)
	case anthropic.StatusEvent:
		s.Status(ev.Message)
	}
}
