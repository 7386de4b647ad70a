// File: internal/domain/chat.go
package domain

import "time"

// Chat represents a single conversation thread held by a conversation store.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"` // Empty until the first user message arrives
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy of the chat whose message slice is not shared.
func (c Chat) Clone() Chat {
	out := c
	out.Messages = append([]Message(nil), c.Messages...)
	return out
}
