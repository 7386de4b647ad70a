// File: internal/services/ai/ollama_provider.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// OllamaProvider talks to an Ollama-style /api/chat endpoint that answers
// with newline-delimited JSON fragments.
type OllamaProvider struct {
	config     *Config
	httpClient *http.Client
	logger     Logger
}

// NewOllamaProvider creates a provider. The HTTP client carries no timeout of
// its own; streams are bounded by the caller's context.
func NewOllamaProvider(config *Config, httpClient *http.Client, logger Logger) *OllamaProvider {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OllamaProvider{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (p *OllamaProvider) Name() string { return ProtocolOllama }

// StreamChat posts the history and hands each decoded fragment to onFragment.
// The response body is closed on every return path.
func (p *OllamaProvider) StreamChat(ctx context.Context, req ChatRequest, onFragment FragmentHandler) error {
	body, err := json.Marshal(req)
	if err != nil {
		return NewProviderError("chat", "failed to encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.ChatEndpoint(), bytes.NewReader(body))
	if err != nil {
		return NewProviderError("chat", "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	p.logger.Debug("sending chat request upstream", "endpoint", p.config.ChatEndpoint(), "model", req.Model, "messages", len(req.Messages))

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return NewNetworkError("chat", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewStatusError("chat", resp.StatusCode)
	}

	// The UTF-8 transformer keeps a rune split across two reads intact and
	// replaces invalid bytes with U+FFFD.
	reader := transform.NewReader(resp.Body, unicode.UTF8.NewDecoder())
	decoder := NewFragmentDecoder(func(line string, err error) {
		p.logger.Warn("failed to parse stream fragment", "line", line, "error", err)
	})

	size := p.config.ReadBufferSize
	if size <= 0 {
		size = 4096
	}
	buf := make([]byte, size)
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			for _, fragment := range decoder.Feed(buf[:n]) {
				if !onFragment(fragment) {
					return nil
				}
			}
		}
		if errors.Is(readErr, io.EOF) {
			for _, fragment := range decoder.Flush() {
				if !onFragment(fragment) {
					return nil
				}
			}
			return nil
		}
		if readErr != nil {
			return NewStreamError("chat", readErr)
		}
	}
}

// HealthCheck verifies that the upstream server answers on its base URL.
func (p *OllamaProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL, nil)
	if err != nil {
		return NewProviderError("health", "failed to create request", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return NewNetworkError("health", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return NewStatusError("health", resp.StatusCode)
	}
	return nil
}
