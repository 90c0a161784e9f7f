package anthropic

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	dataPrefix = "data:"

	// codeExecutionToolName is the server tool whose input we reconstruct.
	codeExecutionToolName = "code_execution"
)

// decoder parses SSE frames into stream events. Unknown event types,
// unknown fields and malformed payloads are skipped without failing the
// stream; the wire format is expected to grow new shapes over time.
//
// A decoder also owns the accumulator for the one in-progress tool-use
// block. Input JSON arrives as fragments split at arbitrary byte offsets
// and is only parsed once the block stops.
type decoder struct {
	log *Logger

	collecting bool
	toolInput  []byte
}

// decode parses one frame and returns the events it produced, usually zero
// or one. Frames without a data line are protocol noise (comments,
// heartbeats) and yield nothing.
func (d *decoder) decode(frame string) []StreamEvent {
	payload := dataLine(frame)
	if payload == "" {
		return nil
	}
	if !gjson.Valid(payload) {
		d.log.Debug("skipping unparseable frame", "payload", payload)
		return nil
	}

	root := gjson.Parse(payload)
	switch root.Get("type").String() {
	case "message_start":
		container := root.Get("message.container")
		if container.Exists() {
			return []StreamEvent{SessionInfoEvent{
				ID:        container.Get("id").String(),
				ExpiresAt: container.Get("expires_at").String(),
			}}
		}

	case "content_block_start":
		block := root.Get("content_block")
		switch block.Get("type").String() {
		case "server_tool_use":
			if block.Get("name").String() == codeExecutionToolName {
				// A second start while collecting replaces the previous
				// accumulator; last writer wins.
				d.collecting = true
				d.toolInput = d.toolInput[:0]
			}
		case "code_execution_tool_result":
			// Results arrive inline on the start event, not via deltas.
			return d.interpretResult(block.Get("content"))
		}

	case "content_block_delta":
		delta := root.Get("delta")
		switch delta.Get("type").String() {
		case "text_delta":
			return []StreamEvent{TextEvent{Text: delta.Get("text").String()}}
		case "input_json_delta":
			if d.collecting {
				d.toolInput = append(d.toolInput, delta.Get("partial_json").String()...)
			}
		}

	case "content_block_stop":
		if d.collecting && len(d.toolInput) > 0 {
			ev := d.finishToolInput()
			d.collecting = false
			d.toolInput = d.toolInput[:0]
			return ev
		}
		d.collecting = false
	}

	return nil
}

// dataLine extracts the payload from the line carrying the data marker.
func dataLine(frame string) string {
	for _, line := range strings.Split(frame, "\n") {
		if strings.HasPrefix(line, dataPrefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		}
	}
	return ""
}

// finishToolInput parses the accumulated input JSON and extracts the code
// string. Malformed input is dropped without an event, matching upstream
// behavior; the debug log is the only diagnostic.
func (d *decoder) finishToolInput() []StreamEvent {
	input := string(d.toolInput)
	if !gjson.Valid(input) {
		d.log.Debug("dropping unparseable tool input", "input", input)
		return nil
	}
	code := gjson.Get(input, "code")
	if code.Type != gjson.String {
		d.log.Debug("tool input has no code field", "input", input)
		return nil
	}
	return []StreamEvent{ToolInputEvent{Code: code.String()}}
}

// interpretResult maps a completed tool result to exactly one event. Every
// well-formed result payload is either a success or an error.
func (d *decoder) interpretResult(content gjson.Result) []StreamEvent {
	switch content.Get("type").String() {
	case "code_execution_result":
		out := ToolOutputEvent{
			Stdout:   content.Get("stdout").String(),
			Stderr:   content.Get("stderr").String(),
			ExitCode: int(content.Get("return_code").Int()),
		}
		content.Get("content").ForEach(func(_, f gjson.Result) bool {
			if f.Get("type").String() == "code_execution_output" {
				id := f.Get("file_id").String()
				out.Files = append(out.Files, FileRef{ID: id, DisplayName: id})
			}
			return true
		})
		return []StreamEvent{out}

	case "code_execution_tool_result_error":
		return []StreamEvent{ToolErrorEvent{Code: content.Get("error_code").String()}}
	}

	d.log.Debug("unrecognized tool result shape", "type", content.Get("type").String())
	return nil
}
