package anthropic

import (
	"reflect"
	"testing"
)

func decodeAll(t *testing.T, d *decoder, frames ...string) []StreamEvent {
	t.Helper()
	var events []StreamEvent
	for _, f := range frames {
		events = append(events, d.decode(f)...)
	}
	return events
}

func TestDecodeSessionInfo(t *testing.T) {
	d := &decoder{}
	events := d.decode(`data: {"type":"message_start","message":{"container":{"id":"c1","expires_at":"t1"}}}`)
	want := []StreamEvent{SessionInfoEvent{ID: "c1", ExpiresAt: "t1"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("decode() = %v, want %v", events, want)
	}

	t.Run("no container", func(t *testing.T) {
		events := d.decode(`data: {"type":"message_start","message":{}}`)
		if events != nil {
			t.Errorf("expected no events without container, got %v", events)
		}
	})
}

func TestDecodeTextDelta(t *testing.T) {
	d := &decoder{}
	events := decodeAll(t, d,
		`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"Hel"}}`,
		`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"lo"}}`,
	)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	var got string
	for _, ev := range events {
		text, ok := ev.(TextEvent)
		if !ok {
			t.Fatalf("expected TextEvent, got %T", ev)
		}
		got += text.Text
	}
	if got != "Hello" {
		t.Errorf("concatenated text = %q, want %q", got, "Hello")
	}
}

func TestDecodeToolInput(t *testing.T) {
	start := `data: {"type":"content_block_start","content_block":{"type":"server_tool_use","id":"tu1","name":"code_execution"}}`
	stop := `data: {"type":"content_block_stop"}`

	t.Run("fragmented input json", func(t *testing.T) {
		d := &decoder{}
		events := decodeAll(t, d,
			start,
			`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"co"}}`,
			`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"de\":\"print(1)\"}"}}`,
			stop,
		)
		want := []StreamEvent{ToolInputEvent{Code: "print(1)"}}
		if !reflect.DeepEqual(events, want) {
			t.Errorf("events = %v, want %v", events, want)
		}
	})

	t.Run("single fragment equivalent", func(t *testing.T) {
		d := &decoder{}
		events := decodeAll(t, d,
			start,
			`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"code\":\"print(1)\"}"}}`,
			stop,
		)
		want := []StreamEvent{ToolInputEvent{Code: "print(1)"}}
		if !reflect.DeepEqual(events, want) {
			t.Errorf("events = %v, want %v", events, want)
		}
	})

	t.Run("malformed json dropped silently", func(t *testing.T) {
		d := &decoder{}
		events := decodeAll(t, d,
			start,
			`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"code\": oops"}}`,
			stop,
		)
		if events != nil {
			t.Errorf("expected no events for malformed input, got %v", events)
		}
	})

	t.Run("missing code field dropped", func(t *testing.T) {
		d := &decoder{}
		events := decodeAll(t, d,
			start,
			`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"other\":1}"}}`,
			stop,
		)
		if events != nil {
			t.Errorf("expected no events without code field, got %v", events)
		}
	})

	t.Run("delta without open block ignored", func(t *testing.T) {
		d := &decoder{}
		events := decodeAll(t, d,
			`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"code\":\"x\"}"}}`,
			stop,
		)
		if events != nil {
			t.Errorf("expected no events, got %v", events)
		}
	})

	t.Run("second start replaces accumulator", func(t *testing.T) {
		d := &decoder{}
		events := decodeAll(t, d,
			start,
			`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"code\":\"old"}}`,
			start,
			`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"code\":\"new\"}"}}`,
			stop,
		)
		want := []StreamEvent{ToolInputEvent{Code: "new"}}
		if !reflect.DeepEqual(events, want) {
			t.Errorf("events = %v, want %v", events, want)
		}
	})

	t.Run("other tool name not collected", func(t *testing.T) {
		d := &decoder{}
		events := decodeAll(t, d,
			`data: {"type":"content_block_start","content_block":{"type":"server_tool_use","id":"tu1","name":"web_search"}}`,
			`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"code\":\"x\"}"}}`,
			stop,
		)
		if events != nil {
			t.Errorf("expected no events for other tool, got %v", events)
		}
	})
}

func TestDecodeToolResult(t *testing.T) {
	t.Run("success with file output", func(t *testing.T) {
		d := &decoder{}
		events := d.decode(`data: {"type":"content_block_start","content_block":{"type":"code_execution_tool_result","tool_use_id":"tu1","content":{"type":"code_execution_result","stdout":"","stderr":"boom","return_code":1,"content":[{"type":"code_execution_output","file_id":"f_1"}]}}}`)
		want := []StreamEvent{ToolOutputEvent{
			Stdout:   "",
			Stderr:   "boom",
			ExitCode: 1,
			Files:    []FileRef{{ID: "f_1", DisplayName: "f_1"}},
		}}
		if !reflect.DeepEqual(events, want) {
			t.Errorf("events = %v, want %v", events, want)
		}
	})

	t.Run("error result", func(t *testing.T) {
		d := &decoder{}
		events := d.decode(`data: {"type":"content_block_start","content_block":{"type":"code_execution_tool_result","tool_use_id":"tu1","content":{"type":"code_execution_tool_result_error","error_code":"unavailable"}}}`)
		want := []StreamEvent{ToolErrorEvent{Code: "unavailable"}}
		if !reflect.DeepEqual(events, want) {
			t.Errorf("events = %v, want %v", events, want)
		}
	})
}

func TestDecodeNoise(t *testing.T) {
	d := &decoder{}

	noise := []string{
		"",
		": heartbeat",
		"event: ping",
		"data: not json at all",
		`data: {"type":"totally_new_event","field":123}`,
		`data: {"type":"message_delta","delta":{"stop_reason":"end_turn"}}`,
		`data: {"type":"message_stop"}`,
	}
	for _, frame := range noise {
		if events := d.decode(frame); events != nil {
			t.Errorf("decode(%q) = %v, want nil", frame, events)
		}
	}

	// The decoder keeps working after noise.
	events := d.decode(`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"still here"}}`)
	want := []StreamEvent{TextEvent{Text: "still here"}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("decode after noise = %v, want %v", events, want)
	}
}
