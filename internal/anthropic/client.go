// Package anthropic is a streaming client for the Anthropic Messages API
// with server-side code execution and the Files API. It turns the raw SSE
// response into typed stream events delivered over a bounded channel.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096

	apiVersion = "2023-06-01"

	// Beta features required for server-side code execution and file
	// retrieval.
	codeExecutionBeta = "code-execution-2025-05-22,files-api-2025-04-14"
	filesBeta         = "files-api-2025-04-14"

	codeExecutionToolType = "code_execution_20250522"

	// eventBuffer bounds how far the stream task can outrun the consumer.
	eventBuffer = 100

	// UpdateBuffer is the capacity consumers should give the
	// file-resolution updates channel.
	UpdateBuffer = 100

	readChunkSize = 4096
)

// Client talks to the Anthropic API.
type Client struct {
	baseURL       string
	apiKey        string
	model         string
	maxTokens     int
	codeExecution bool
	httpClient    *http.Client
	log           *Logger
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens sets the response token limit.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithCodeExecution enables the server-side code execution tool.
func WithCodeExecution(enable bool) Option {
	return func(c *Client) {
		c.codeExecution = enable
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a new API client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      defaultModel,
		maxTokens:  defaultMaxTokens,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CodeExecutionEnabled reports whether the code execution tool is attached
// to outgoing requests.
func (c *Client) CodeExecutionEnabled() bool {
	return c.codeExecution
}

// WithCodeExecutionEnabled returns a copy of the client with the code
// execution tool toggled. The copy shares the underlying HTTP client.
func (c *Client) WithCodeExecutionEnabled(enable bool) *Client {
	clone := *c
	clone.codeExecution = enable
	return &clone
}

// Message is one turn of the conversation sent to the API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolParam struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type messagesRequest struct {
	Model     string      `json:"model"`
	Messages  []Message   `json:"messages"`
	MaxTokens int         `json:"max_tokens"`
	Stream    bool        `json:"stream"`
	Tools     []toolParam `json:"tools,omitempty"`
}

// StreamMessage sends the conversation and returns a channel of stream
// events. The returned channel is closed when the response body ends, the
// request fails, or ctx is cancelled. Cancel ctx to stop the stream; the
// task observes cancellation between finishing one chunk's frames and
// awaiting the next, so it never aborts mid-frame and never errors for the
// cancelling caller.
//
// Terminal request failures are reported as a single descriptive text
// event before the channel closes, never as a panic or a stuck channel.
func (c *Client) StreamMessage(ctx context.Context, messages []Message) <-chan StreamEvent {
	events := make(chan StreamEvent, eventBuffer)
	go c.streamTask(ctx, messages, events)
	return events
}

func (c *Client) streamTask(ctx context.Context, messages []Message, events chan<- StreamEvent) {
	defer close(events)

	// Every delivery races against cancellation so an abandoned consumer
	// can never wedge this task.
	publish := func(ev StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	publish(StatusEvent{Message: "Connecting to Claude API..."})

	reqBody := messagesRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: c.maxTokens,
		Stream:    true,
	}
	if c.codeExecution {
		reqBody.Tools = []toolParam{{
			Type: codeExecutionToolType,
			Name: codeExecutionToolName,
		}}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		c.log.Error("marshal messages request", "error", err)
		publish(TextEvent{Text: terminalMessage(transportError(err))})
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		c.log.Error("create messages request", "error", err)
		publish(TextEvent{Text: terminalMessage(transportError(err))})
		return
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("content-type", "application/json")
	if c.codeExecution {
		req.Header.Set("anthropic-beta", codeExecutionBeta)
	}

	publish(StatusEvent{Message: "Sending request..."})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("messages request failed", "error", err)
		publish(TextEvent{Text: terminalMessage(transportError(err))})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			errBody = []byte("Failed to read error response")
		}
		apiErr := classifyStatus(resp.StatusCode, string(errBody))
		c.log.Error("messages request rejected", "status", resp.StatusCode, "kind", apiErr.Kind)
		publish(TextEvent{Text: terminalMessage(apiErr)})
		return
	}

	c.consumeStream(ctx, resp.Body, publish)
}

// consumeStream reads response chunks in a separate goroutine and decodes
// them here, so cancellation is observed at the boundary between one
// chunk's frames and the next read.
func (c *Client) consumeStream(ctx context.Context, body io.Reader, publish func(StreamEvent) bool) {
	chunks := make(chan []byte, 1)
	go func() {
		defer close(chunks)
		buf := make([]byte, readChunkSize)
		for {
			n, err := body.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					c.log.Debug("stream read ended", "error", err)
				}
				return
			}
		}
	}()

	asm := &frameAssembler{}
	dec := &decoder{log: c.log}

	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-chunks:
			if !ok {
				if n := asm.pending(); n > 0 {
					c.log.Debug("stream ended with partial frame", "bytes", n)
				}
				return
			}
			for _, frame := range asm.Feed(chunk) {
				for _, ev := range dec.decode(frame) {
					if !publish(ev) {
						return
					}
				}
			}
		}
	}
}

// terminalMessage formats the one text event a failed session surfaces.
func terminalMessage(err error) string {
	return fmt.Sprintf("\n\nError: %s\n", err.Error())
}
