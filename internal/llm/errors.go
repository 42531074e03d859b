// ABOUTME: Error taxonomy for the OpenAI-facing pipeline
// ABOUTME: Distinguishes configuration, transport, and malformed-response failures
package llm

import (
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey is returned at construction time when no API key is
// configured. Callers should treat extraction features as unavailable.
var ErrMissingAPIKey = errors.New("llm: OpenAI API key is required")

// TransportError carries the HTTP status and message of a failed model call.
// Transport failures are never retried automatically.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("llm: model request failed with status %d: %s", e.StatusCode, e.Message)
}

// ValidationError marks a tool-call payload that is not valid JSON or is
// missing required fields. Distinct from extraction-empty, which is a normal
// nil result.
type ValidationError struct {
	Tool   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("llm: invalid %s arguments: %s", e.Tool, e.Reason)
}

// transportError maps client errors onto the taxonomy above.
func transportError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &TransportError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &TransportError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return fmt.Errorf("llm: model request failed: %w", err)
}
