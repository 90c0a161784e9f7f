package anthropic

import (
	"fmt"
	"strings"
)

// ErrorKind classifies terminal request failures.
type ErrorKind int

const (
	// KindTransport covers connection, DNS and timeout failures before any
	// response arrives.
	KindTransport ErrorKind = iota
	// KindAuth is a 401: invalid or missing API key.
	KindAuth
	// KindInvalidModel is a 400 whose body mentions the model.
	KindInvalidModel
	// KindBadRequest is any other 400.
	KindBadRequest
	// KindRateLimit is a 429.
	KindRateLimit
	// KindServer is any 5xx.
	KindServer
	// KindOther is every remaining non-success status.
	KindOther
)

// APIError is a terminal failure of the initial request or its response
// status. It is surfaced to the consumer exactly once, as a single
// human-readable text event.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("Failed to connect to Anthropic API: %s", e.Body)
	case KindAuth:
		return fmt.Sprintf("Invalid or missing API key: %s", e.Body)
	case KindInvalidModel:
		return fmt.Sprintf("Invalid model name: %s", e.Body)
	case KindBadRequest:
		return fmt.Sprintf("Bad request: %s", e.Body)
	case KindRateLimit:
		return fmt.Sprintf("Rate limit exceeded: %s", e.Body)
	case KindServer:
		return fmt.Sprintf("Anthropic server error: %s", e.Body)
	default:
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
	}
}

// classifyStatus maps a non-success response status and body to an APIError.
func classifyStatus(status int, body string) *APIError {
	e := &APIError{StatusCode: status, Body: body}
	switch {
	case status == 401:
		e.Kind = KindAuth
	case status == 400 && strings.Contains(body, "model"):
		e.Kind = KindInvalidModel
	case status == 400:
		e.Kind = KindBadRequest
	case status == 429:
		e.Kind = KindRateLimit
	case status >= 500:
		e.Kind = KindServer
	default:
		e.Kind = KindOther
	}
	return e
}

// transportError wraps a request dispatch failure.
func transportError(err error) *APIError {
	return &APIError{Kind: KindTransport, Body: err.Error()}
}
