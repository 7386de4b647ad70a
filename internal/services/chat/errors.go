// G:\go_granny\internal\services\chat\errors.go
package chat

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeStreaming  ErrorType = "STREAMING"
	ErrTypeTimeout    ErrorType = "TIMEOUT"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string) *ChatError {
	return &ChatError{Type: ErrTypeConfig, Operation: "config", Message: msg}
}

func NewValidationError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg, Cause: cause}
}

func NewStreamingError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStreaming, Operation: operation, Message: msg, Cause: cause}
}

func NewTimeoutError(operation string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeTimeout, Operation: operation, Message: "upstream did not finish in time", Cause: cause}
}
