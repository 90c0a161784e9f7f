package anthropic

// StreamEvent is one decoded, application-level unit from the streaming
// response. Exactly one of the concrete types below is sent per emission.
type StreamEvent interface {
	streamEvent()
}

// TextEvent carries one assistant text fragment, emitted as soon as its
// frame is decoded.
type TextEvent struct {
	Text string
}

// ToolInputEvent carries the code the model asked to execute, emitted once
// the tool-use block closes and its accumulated JSON parses.
type ToolInputEvent struct {
	Code string
}

// ToolOutputEvent is the result of a successful code execution.
type ToolOutputEvent struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Files    []FileRef
}

// ToolErrorEvent is the result of a failed code execution.
type ToolErrorEvent struct {
	Code string
}

// SessionInfoEvent identifies the container backing code execution.
type SessionInfoEvent struct {
	ID        string
	ExpiresAt string
}

// StatusEvent is a connection progress notice.
type StatusEvent struct {
	Message string
}

func (TextEvent) streamEvent()        {}
func (ToolInputEvent) streamEvent()   {}
func (ToolOutputEvent) streamEvent()  {}
func (ToolErrorEvent) streamEvent()   {}
func (SessionInfoEvent) streamEvent() {}
func (StatusEvent) streamEvent()      {}

// FileRef points at a file created by code execution. DisplayName equals ID
// until the file resolver reports the real filename on the updates channel.
type FileRef struct {
	ID          string
	DisplayName string
}

// FileUpdate pairs a file ID with its resolved display name. Delivered on
// the secondary channel with no ordering guarantee relative to events.
type FileUpdate struct {
	ID   string
	Name string
}
