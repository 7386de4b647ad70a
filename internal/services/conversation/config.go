package conversation

import "fmt"

// DefaultPersonaPrompt is the system instruction prepended to every history.
const DefaultPersonaPrompt = "You are Granny, a warm, wise Caribbean grandmother who speaks in authentic Creole. Share stories, advice, and cultural wisdom using natural Creole expressions, sayings, and speech pattern"

const (
	defaultConversationLimit = 30
	titleMaxLength           = 50
	titleEllipsis            = "..."
)

type Config struct {
	PersonaPrompt     string // System prompt sent first in every history
	ConversationLimit int    // Most recent user/assistant messages sent upstream
}

func DefaultConfig() *Config {
	return &Config{
		PersonaPrompt:     DefaultPersonaPrompt,
		ConversationLimit: defaultConversationLimit,
	}
}

func (c *Config) Validate() error {
	if c.PersonaPrompt == "" {
		return fmt.Errorf("persona prompt is required")
	}
	if c.ConversationLimit <= 0 {
		return fmt.Errorf("conversation limit must be positive")
	}
	return nil
}
