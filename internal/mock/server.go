// Package mock serves a local stand-in for the Anthropic API so the TUI
// and pipe modes can be exercised without credentials. It speaks the same
// SSE wire format the client consumes.
package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Server struct {
	port int
}

func NewServer(port int) *Server {
	return &Server{port: port}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/v1/messages", s.messagesHandler)
	mux.HandleFunc("/v1/files/", s.filesHandler)

	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("Mock Anthropic API on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
}

func (s *Server) messagesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	userMessage := ""
	if len(req.Messages) > 0 {
		userMessage = req.Messages[len(req.Messages)-1].Content
	}

	codeExecution := false
	for _, t := range req.Tools {
		if t.Name == "code_execution" {
			codeExecution = true
		}
	}

	s.streamResponse(w, flusher, userMessage, codeExecution)
}

func (s *Server) streamResponse(w http.ResponseWriter, flusher http.Flusher, userMessage string, codeExecution bool) {
	sendEvent(w, flusher, "message_start", map[string]any{
		"message": map[string]any{
			"id":   "msg_mock_001",
			"role": "assistant",
			"container": map[string]any{
				"id":         "container_mock_001",
				"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			},
		},
	})

	if codeExecution && wantsCode(userMessage) {
		s.streamText(w, flusher, 0, "Let me run that for you.\n")
		s.streamCodeExecution(w, flusher)
		s.streamText(w, flusher, 3, "\nDone. The result is **4** and the chart was saved as a file.")
	} else {
		s.streamText(w, flusher, 0, mockReply(userMessage))
	}

	sendEvent(w, flusher, "message_stop", map[string]any{})
}

// streamText emits one text content block as a series of small deltas.
func (s *Server) streamText(w http.ResponseWriter, flusher http.Flusher, index int, text string) {
	sendEvent(w, flusher, "content_block_start", map[string]any{
		"index":         index,
		"content_block": map[string]any{"type": "text"},
	})

	runes := []rune(text)
	for i := 0; i < len(runes); i += 4 {
		end := i + 4
		if end > len(runes) {
			end = len(runes)
		}
		sendEvent(w, flusher, "content_block_delta", map[string]any{
			"index": index,
			"delta": map[string]any{
				"type": "text_delta",
				"text": string(runes[i:end]),
			},
		})
		time.Sleep(20 * time.Millisecond)
	}

	sendEvent(w, flusher, "content_block_stop", map[string]any{"index": index})
}

// streamCodeExecution emits a server_tool_use block with fragmented input
// JSON, then the matching tool result carrying one file output.
func (s *Server) streamCodeExecution(w http.ResponseWriter, flusher http.Flusher) {
	sendEvent(w, flusher, "content_block_start", map[string]any{
		"index": 1,
		"content_block": map[string]any{
			"type": "server_tool_use",
			"id":   "srvtoolu_mock_001",
			"name": "code_execution",
		},
	})

	input := `{"code": "import matplotlib.pyplot as plt\nprint(2 + 2)\nplt.plot([1, 2, 3])\nplt.savefig('plot.png')"}`
	for i := 0; i < len(input); i += 7 {
		end := i + 7
		if end > len(input) {
			end = len(input)
		}
		sendEvent(w, flusher, "content_block_delta", map[string]any{
			"index": 1,
			"delta": map[string]any{
				"type":         "input_json_delta",
				"partial_json": input[i:end],
			},
		})
		time.Sleep(10 * time.Millisecond)
	}

	sendEvent(w, flusher, "content_block_stop", map[string]any{"index": 1})
	time.Sleep(400 * time.Millisecond)

	sendEvent(w, flusher, "content_block_start", map[string]any{
		"index": 2,
		"content_block": map[string]any{
			"type":        "code_execution_tool_result",
			"tool_use_id": "srvtoolu_mock_001",
			"content": map[string]any{
				"type":        "code_execution_result",
				"stdout":      "4\n",
				"stderr":      "",
				"return_code": 0,
				"content": []map[string]any{
					{"type": "code_execution_output", "file_id": "file_mock_001"},
				},
			},
		},
	})
	sendEvent(w, flusher, "content_block_stop", map[string]any{"index": 2})
}

func wantsCode(userMessage string) bool {
	m := strings.ToLower(userMessage)
	return strings.Contains(m, "run") ||
		strings.Contains(m, "code") ||
		strings.Contains(m, "plot") ||
		strings.Contains(m, "calculate") ||
		strings.Contains(m, "execute")
}

func mockReply(userMessage string) string {
	m := strings.ToLower(userMessage)

	if strings.Contains(m, "hello") || strings.Contains(m, "hi") {
		return "Hello! I'm a mock Claude. Ask me to **run** or **plot** something with code execution enabled (Ctrl+X) to see the tool flow."
	}

	return "This is a mock response so you can exercise the interface without an API key.\n\nTry:\n- `hello` for a greeting\n- `run some code` with code execution on for the full tool round trip"
}

// filesHandler serves file metadata and content for the mock file produced
// by the code execution result.
func (s *Server) filesHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/files/")

	if id, ok := strings.CutSuffix(rest, "/content"); ok {
		if id != "file_mock_001" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		fmt.Fprint(w, "mock png bytes")
		return
	}

	if rest != "file_mock_001" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":         "file_mock_001",
		"filename":   "plot.png",
		"mime_type":  "image/png",
		"size_bytes": 14,
	})
}

// sendEvent writes one SSE frame. The event name is mirrored into the
// payload's type field, which is where the client dispatches from.
func sendEvent(w http.ResponseWriter, flusher http.Flusher, event string, data map[string]any) {
	data["type"] = event
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData)
	flusher.Flush()
}
