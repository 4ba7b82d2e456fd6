// Package llm defines the Provider interface for language-model completion
// backends.
//
// The extraction client only needs single-shot chat completions, so the
// interface is deliberately small: one Complete call. Implementations wrap a
// concrete SDK (see the openai and anyllm subpackages) and must be safe for
// concurrent use.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Message is a single message in a chat completion request.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string
}

// Usage holds token accounting returned by the backend. Counts are in the
// model's native token unit and may differ between providers for the same
// text.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything the model needs to produce a response.
// Messages must be non-empty.
type CompletionRequest struct {
	// SystemPrompt is a high-priority instruction injected before the
	// conversation. Providers that lack a dedicated system slot prepend it as
	// a "system"-role message.
	SystemPrompt string

	// Messages is the ordered conversation. The last message drives the
	// response.
	Messages []Message

	// Temperature controls output randomness in [0.0, 2.0]. Zero requests the
	// provider default.
	Temperature float64

	// MaxTokens caps completion length. Zero means provider default.
	MaxTokens int
}

// CompletionResponse is the full, non-streaming model reply.
type CompletionResponse struct {
	// Content is the text of the assistant's reply.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any completion backend. Implementations
// must be safe for concurrent use and must propagate context cancellation.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	// Transport and HTTP-level failures are reported as a wrapped [*APIError]
	// when a status code is known, so callers can distinguish retryable
	// failures (429, 5xx) from terminal ones (401).
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// APIError is an HTTP-level failure from a completion backend.
type APIError struct {
	// StatusCode is the HTTP status returned by the backend, or 0 when the
	// request never produced a response (network error, timeout).
	StatusCode int

	// Message is the backend's error message, when one was present in the
	// response body.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("llm: api error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("llm: api error (status %d): %s", e.StatusCode, e.Message)
}

// StatusOf returns the HTTP status carried by err's [*APIError], or 0 when
// err carries none.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
