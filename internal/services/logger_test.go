package services

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"WARN", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"", LogLevelInfo},
		{"bogus", LogLevelInfo},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseLogLevel(tc.in), "input %q", tc.in)
	}
}

func TestProductionLogger_StructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProductionLogger(&buf, "granny", LogLevelInfo, true)

	logger.Info("stream completed", "response_length", 5)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "granny", entry["service"])
	assert.Equal(t, "stream completed", entry["msg"])
	assert.EqualValues(t, 5, entry["response_length"])
}

func TestProductionLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProductionLogger(&buf, "granny", LogLevelWarn, false)

	logger.Debug("hidden")
	logger.Info("hidden too")
	assert.Empty(t, buf.String())

	logger.Warn("shown", "line", "{oops")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger.SetLevel(LogLevelDebug)
	logger.Debug("now visible")
	assert.True(t, strings.Contains(buf.String(), "now visible"))
}

func TestNewLogger_TestEnvIsSilent(t *testing.T) {
	_, ok := NewLogger("granny", "test", "debug").(*NoOpLogger)
	assert.True(t, ok)
}
