package notify

import "fmt"

// KeyError is returned for a malformed Notify API key.
type KeyError struct {
	Message string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("invalid notify api key: %s", e.Message)
}

// SendError represents a failed email send. The run records it and moves on.
type SendError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *SendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to send email: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to send email: HTTP status %d: %s", e.StatusCode, e.Message)
}

func (e *SendError) Unwrap() error {
	return e.Cause
}

// TemplateError means Notify rejected the request itself, typically a bad
// template id or missing personalisation. Every later send would fail the
// same way, so callers stop.
type TemplateError struct {
	TemplateID string
	Message    string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("notify rejected template %s: %s", e.TemplateID, e.Message)
}
