// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProtocolOllama = "ollama"
	ProtocolOpenAI = "openai"

	chatPath = "/api/chat"
)

type Config struct {
	BaseURL  string // Upstream base URL, without the /api/chat path
	Model    string
	Protocol string // ProtocolOllama or ProtocolOpenAI
	APIKey   string // Only sent by the OpenAI-compatible provider

	// Deadline for a whole streamed reply, from request to final fragment.
	Timeout time.Duration
	// Buffer size for reads from the upstream body.
	ReadBufferSize int
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("upstream base URL is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model name is required")
	}
	if c.Protocol != ProtocolOllama && c.Protocol != ProtocolOpenAI {
		return fmt.Errorf("unknown upstream protocol %q", c.Protocol)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("read buffer size must be positive")
	}
	return nil
}

// ChatEndpoint is the URL the Ollama provider posts to.
func (c *Config) ChatEndpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + chatPath
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://127.0.0.1:11434",
		Protocol:       ProtocolOllama,
		Timeout:        5 * time.Minute,
		ReadBufferSize: 4096,
	}
}
