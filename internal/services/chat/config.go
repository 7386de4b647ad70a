// G:\go_granny\internal\services\chat\config.go
package chat

import (
	"fmt"
	"time"
)

// EmptyResponseMessage is returned when the stream ends without any text.
const EmptyResponseMessage = "I apologize, but I didn't receive a complete response. Please try again."

// DefaultFallbackResponses are sent in place of a reply when the upstream call fails.
var DefaultFallbackResponses = []string{
	"Well child, seems like I'm having trouble hearing you clearly right now. Try again in a moment, love.",
	"Oh honey, my old ears are acting up! Give me a second and ask again, darling.",
	"Sweet child, something's not quite right with the connection. Let's try that again, yes?",
}

type Config struct {
	// Model Configuration
	Model string // Model name sent with every upstream request

	// Performance Configuration
	Timeout       time.Duration // Deadline for one streamed reply
	RecordTimeout time.Duration // Deadline for writing the exchange log entry

	// Replies
	EmptyResponseMessage string
	FallbackResponses    []string
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RecordTimeout <= 0 {
		return fmt.Errorf("record timeout must be positive")
	}
	if c.EmptyResponseMessage == "" {
		return fmt.Errorf("empty response message is required")
	}
	if len(c.FallbackResponses) == 0 {
		return fmt.Errorf("at least one fallback response is required")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:              5 * time.Minute,
		RecordTimeout:        5 * time.Second,
		EmptyResponseMessage: EmptyResponseMessage,
		FallbackResponses:    append([]string(nil), DefaultFallbackResponses...),
	}
}
