// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider streams through an OpenAI-compatible /v1 API (Ollama serves
// one next to its native endpoint). Stream chunks are mapped onto the same
// Fragment shape the Ollama provider emits.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
	logger Logger
}

func NewOpenAIProvider(config *Config, httpClient *http.Client, logger Logger) *OpenAIProvider {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = "ollama" // Ollama ignores the key but the header must be present
	}
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/") + "/v1"
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}
}

func (p *OpenAIProvider) Name() string { return ProtocolOpenAI }

func (p *OpenAIProvider) StreamChat(ctx context.Context, req ChatRequest, onFragment FragmentHandler) error {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:         req.Model,
		Messages:      messages,
		Stream:        true,
		StreamOptions: &openai.StreamOptions{IncludeUsage: true},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
			return NewStatusError("chat", apiErr.HTTPStatusCode)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
			return NewStatusError("chat", reqErr.HTTPStatusCode)
		}
		return NewNetworkError("chat", err)
	}
	defer stream.Close()

	var usage *openai.Usage
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return p.finish(onFragment, usage)
		}
		if err != nil {
			return NewStreamError("chat", err)
		}
		if resp.Usage != nil {
			usage = resp.Usage
		}
		for _, choice := range resp.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			fragment := Fragment{Message: &FragmentMessage{Role: choice.Delta.Role, Content: choice.Delta.Content}}
			if !onFragment(fragment) {
				return nil
			}
		}
	}
}

// finish emits the terminal fragment once the stream is exhausted.
func (p *OpenAIProvider) finish(onFragment FragmentHandler, usage *openai.Usage) error {
	done := Fragment{Done: true}
	if usage != nil {
		done.EvalCount = json.RawMessage(strconv.Itoa(usage.CompletionTokens))
	}
	onFragment(done)
	return nil
}

// HealthCheck lists models as a cheap authenticated round trip.
func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return NewProviderError("health", "failed to list models", err)
	}
	return nil
}
