package services

import "fmt"

// Typed errors returned by the services. Handlers map each to a status code and
// a caller-safe message.

type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "Validation error"
	}
	return e.Message
}

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// UnsafeQueryError is a guardrail refusal: off-topic or prompt-injection text.
type UnsafeQueryError struct{ Message string }

func (e *UnsafeQueryError) Error() string { return e.Message }

// UpstreamError wraps any failure of the model provider. Its cause is for logs
// only and is never shown to callers.
type UpstreamError struct{ Err error }

func (e *UpstreamError) Error() string { return fmt.Sprintf("upstream model failure: %v", e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }
