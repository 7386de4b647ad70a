// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	// Upstream inference API. The proxy posts to APIBaseURL + "/api/chat".
	APIBaseURL       string
	ModelName        string
	UpstreamProtocol string // "ollama" or "openai"
	OpenAIAPIKey     string
	UpstreamTimeout  time.Duration

	ConversationLimit  int
	PersonaPrompt      string // Empty keeps the built-in persona
	SessionIdleTimeout time.Duration
	ExchangeLogEnabled bool

	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		APIBaseURL:         strings.TrimRight(getEnv("API_URL", "http://127.0.0.1:11434"), "/"),
		ModelName:          getEnv("MODEL_NAME", "llama3.2"),
		UpstreamProtocol:   strings.ToLower(getEnv("UPSTREAM_PROTOCOL", "ollama")),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		UpstreamTimeout:    getEnvAsDuration("UPSTREAM_TIMEOUT", 5*time.Minute),
		ConversationLimit:  getEnvAsInt("CONVERSATION_LIMIT", 30),
		PersonaPrompt:      getEnv("PERSONA_PROMPT", ""),
		SessionIdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		ExchangeLogEnabled: getEnvAsBool("EXCHANGE_LOG_ENABLED", true),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Environment:        env,
	}
}

// IsProduction reports whether ENV is set to production.
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// Validate checks the loaded values. In production the upstream settings must
// be provided explicitly rather than falling back to local defaults.
func (c *Config) Validate() error {
	if c.IsProduction() {
		missing := []string{}
		if _, ok := os.LookupEnv("API_URL"); !ok {
			missing = append(missing, "API_URL")
		}
		if _, ok := os.LookupEnv("MODEL_NAME"); !ok {
			missing = append(missing, "MODEL_NAME")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required production environment variables: %v", missing)
		}
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_URL cannot be empty")
	}
	if c.ModelName == "" {
		return fmt.Errorf("MODEL_NAME cannot be empty")
	}
	if c.UpstreamProtocol != "ollama" && c.UpstreamProtocol != "openai" {
		return fmt.Errorf("UPSTREAM_PROTOCOL must be ollama or openai, got %q", c.UpstreamProtocol)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.ConversationLimit <= 0 {
		return fmt.Errorf("CONVERSATION_LIMIT must be positive")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

// getEnvAsDuration accepts Go duration syntax ("90s", "5m") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return b
}
