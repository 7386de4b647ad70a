// G:\go_granny\internal\services\chat\types.go
package chat

import (
	"encoding/json"

	"github.com/iyunix/go-granny/internal/domain"
)

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Request is the body accepted by the chat endpoint. The limit has already
// been applied by the client and is not used here.
type Request struct {
	ConversationHistory []domain.HistoryEntry `json:"conversationHistory"`
	ConversationLimit   int                   `json:"conversationLimit"`
}

// Metadata carries the statistics of the terminal fragment unchanged.
type Metadata struct {
	TotalDuration json.RawMessage `json:"total_duration,omitempty"`
	EvalCount     json.RawMessage `json:"eval_count,omitempty"`
}

// Response is the body returned by the chat endpoint, on success and failure alike.
type Response struct {
	Response string    `json:"response"`
	Success  bool      `json:"success"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Completion is the accumulated result of one upstream stream.
type Completion struct {
	Text     string
	Done     bool      // A fragment with done=true was seen
	Metadata *Metadata // Set only when Done
}
