// File: internal/services/ai/interface.go
package ai

import (
	"context"
	"encoding/json"

	"github.com/iyunix/go-granny/internal/domain"
)

// ChatRequest is what gets sent upstream: the model and the verbatim history.
type ChatRequest struct {
	Model    string                `json:"model"`
	Messages []domain.HistoryEntry `json:"messages"`
}

// FragmentMessage is the message part of a streamed fragment.
type FragmentMessage struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

// Fragment is one decoded line of the upstream stream. Any field may be
// absent; the statistics are usually only present on the final fragment and
// are kept as raw JSON so they can be passed through unchanged.
type Fragment struct {
	Message       *FragmentMessage `json:"message,omitempty"`
	Done          bool             `json:"done"`
	TotalDuration json.RawMessage  `json:"total_duration,omitempty"`
	EvalCount     json.RawMessage  `json:"eval_count,omitempty"`
}

// Content returns the text delta carried by the fragment, if any.
func (f Fragment) Content() string {
	if f.Message == nil {
		return ""
	}
	return f.Message.Content
}

// FragmentHandler receives fragments in stream order. Returning false stops
// the stream; the provider then releases the connection and returns nil.
type FragmentHandler func(Fragment) bool

// StreamProvider streams a chat completion from an upstream model server.
type StreamProvider interface {
	StreamChat(ctx context.Context, req ChatRequest, onFragment FragmentHandler) error
	HealthCheck(ctx context.Context) error
	Name() string
}
