package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "production") // skip .env lookup
	unsetEnv(t, "SERVER_PORT", "API_URL", "UPSTREAM_PROTOCOL", "UPSTREAM_TIMEOUT",
		"CONVERSATION_LIMIT", "SESSION_IDLE_TIMEOUT", "EXCHANGE_LOG_ENABLED")
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http://127.0.0.1:11434", cfg.APIBaseURL)
	assert.Equal(t, "ollama", cfg.UpstreamProtocol)
	assert.Equal(t, 5*time.Minute, cfg.UpstreamTimeout)
	assert.Equal(t, 30, cfg.ConversationLimit)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTimeout)
	assert.True(t, cfg.ExchangeLogEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("API_URL", "http://ollama.internal:11434/")
	t.Setenv("MODEL_NAME", "granny:latest")
	t.Setenv("UPSTREAM_PROTOCOL", "OpenAI")
	t.Setenv("UPSTREAM_TIMEOUT", "90")
	t.Setenv("CONVERSATION_LIMIT", "12")
	t.Setenv("SESSION_IDLE_TIMEOUT", "15m")
	t.Setenv("EXCHANGE_LOG_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, "http://ollama.internal:11434", cfg.APIBaseURL)
	assert.Equal(t, "granny:latest", cfg.ModelName)
	assert.Equal(t, "openai", cfg.UpstreamProtocol)
	assert.Equal(t, 90*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 12, cfg.ConversationLimit)
	assert.Equal(t, 15*time.Minute, cfg.SessionIdleTimeout)
	assert.False(t, cfg.ExchangeLogEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("CONVERSATION_LIMIT", "lots")
	t.Setenv("UPSTREAM_TIMEOUT", "soon")

	cfg := Load()
	assert.Equal(t, 30, cfg.ConversationLimit)
	assert.Equal(t, 5*time.Minute, cfg.UpstreamTimeout)
}

func TestValidate_ProductionRequiresUpstream(t *testing.T) {
	t.Setenv("ENV", "production")
	unsetEnv(t, "API_URL", "MODEL_NAME")
	cfg := Load()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_URL")
	assert.Contains(t, err.Error(), "MODEL_NAME")
}

func TestValidate_Fields(t *testing.T) {
	base := Config{
		APIBaseURL:        "http://localhost:11434",
		ModelName:         "llama3.2",
		UpstreamProtocol:  "ollama",
		UpstreamTimeout:   time.Minute,
		ConversationLimit: 30,
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.UpstreamProtocol = "grpc"
	assert.Error(t, bad.Validate())

	bad = base
	bad.ConversationLimit = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.UpstreamTimeout = 0
	assert.Error(t, bad.Validate())
}
