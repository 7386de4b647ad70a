// File: internal/services/chat/proxy.go
package chat

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/iyunix/go-granny/internal/domain"
	"github.com/iyunix/go-granny/internal/services/ai"
)

// ProxyService forwards a conversation history to the upstream model and
// collects the streamed reply into a single response.
type ProxyService struct {
	config   *Config
	provider ai.StreamProvider
	recorder ExchangeRecorder
	logger   Logger

	pick func(n int) int
	now  func() time.Time
}

// NewProxyService creates a proxy. recorder may be nil to disable the exchange log.
func NewProxyService(config *Config, provider ai.StreamProvider, recorder ExchangeRecorder, logger Logger) (*ProxyService, error) {
	if config == nil {
		return nil, NewConfigError("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	if provider == nil {
		return nil, NewConfigError("stream provider is required")
	}
	return &ProxyService{
		config:   config,
		provider: provider,
		recorder: recorder,
		logger:   logger,
		pick:     rand.Intn,
		now:      time.Now,
	}, nil
}

// Complete runs one upstream stream to completion. Reading stops at the first
// fragment marked done; the whole call is bounded by the configured timeout
// and by ctx.
func (s *ProxyService) Complete(ctx context.Context, history []domain.HistoryEntry) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var reply strings.Builder
	completion := &Completion{}

	err := s.provider.StreamChat(ctx, ai.ChatRequest{Model: s.config.Model, Messages: history}, func(f ai.Fragment) bool {
		reply.WriteString(f.Content())
		if f.Done {
			completion.Done = true
			completion.Metadata = &Metadata{TotalDuration: f.TotalDuration, EvalCount: f.EvalCount}
			return false
		}
		return true
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewTimeoutError("complete", err)
		}
		return nil, NewStreamingError("complete", "upstream stream failed", err)
	}

	completion.Text = reply.String()
	return completion, nil
}

// Respond never fails: upstream errors become a persona fallback with
// Success=false and the error text attached.
func (s *ProxyService) Respond(ctx context.Context, history []domain.HistoryEntry) *Response {
	start := s.now()
	s.logger.Debug("sending to API", "model", s.config.Model, "messages", len(history))

	completion, err := s.Complete(ctx, history)

	var resp *Response
	switch {
	case err != nil:
		s.logger.Error("API Error", "error", err)
		resp = s.Fallback(err)
	case completion.Done:
		s.logger.Info("stream completed", "response_length", len(completion.Text))
		resp = &Response{Response: completion.Text, Success: true, Metadata: completion.Metadata}
	default:
		s.logger.Warn("stream ended without done fragment", "response_length", len(completion.Text))
		text := completion.Text
		if text == "" {
			text = s.config.EmptyResponseMessage
		}
		resp = &Response{Response: text, Success: true}
	}

	s.record(len(history), resp, s.now().Sub(start))
	return resp
}

// Fallback picks one of the configured fallback replies uniformly at random.
func (s *ProxyService) Fallback(err error) *Response {
	replies := s.config.FallbackResponses
	resp := &Response{
		Response: replies[s.pick(len(replies))],
		Success:  false,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// record writes the exchange log entry. Failures are logged and otherwise ignored.
func (s *ProxyService) record(messageCount int, resp *Response, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.config.RecordTimeout)
	defer cancel()

	exchange := &domain.Exchange{
		Model:          s.config.Model,
		MessageCount:   messageCount,
		ResponseLength: len(resp.Response),
		Success:        resp.Success,
		Error:          resp.Error,
		DurationMs:     elapsed.Milliseconds(),
	}
	if resp.Metadata != nil {
		exchange.TotalDuration = string(resp.Metadata.TotalDuration)
		exchange.EvalCount = string(resp.Metadata.EvalCount)
	}
	if _, err := s.recorder.Create(ctx, exchange); err != nil {
		s.logger.Error("failed to record exchange", "error", err)
	}
}
