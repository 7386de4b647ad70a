// File: internal/domain/exchange.go
package domain

import "time"

// Exchange records one round trip through the chat proxy.
type Exchange struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Model          string    `gorm:"not null" json:"model"`
	MessageCount   int       `json:"message_count"`
	ResponseLength int       `json:"response_length"`
	Success        bool      `gorm:"index" json:"success"`
	Error          string    `json:"error,omitempty"`
	DurationMs     int64     `json:"duration_ms"`
	TotalDuration  string    `json:"total_duration,omitempty"` // Raw upstream value
	EvalCount      string    `json:"eval_count,omitempty"`     // Raw upstream value
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}
