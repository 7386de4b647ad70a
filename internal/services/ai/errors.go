// File: internal/services/ai/errors.go
package ai

import "fmt"

type ErrorType string

const (
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeNetwork  ErrorType = "NETWORK"
	ErrTypeStatus   ErrorType = "STATUS"
	ErrTypeProvider ErrorType = "PROVIDER"
	ErrTypeStream   ErrorType = "STREAM"
)

type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Model     string
	Operation string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewNetworkError(operation string, cause error) *AIError {
	return &AIError{Type: ErrTypeNetwork, Operation: operation, Message: "upstream request failed", Cause: cause}
}

// NewStatusError reports a non-2xx upstream response.
func NewStatusError(operation string, code int) *AIError {
	return &AIError{
		Type:      ErrTypeStatus,
		Code:      code,
		Operation: operation,
		Message:   fmt.Sprintf("API call failed with status: %d", code),
	}
}

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

func NewStreamError(operation string, cause error) *AIError {
	return &AIError{Type: ErrTypeStream, Operation: operation, Message: "stream read failed", Cause: cause}
}
