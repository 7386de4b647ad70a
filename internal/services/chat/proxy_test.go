package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-granny/internal/domain"
	"github.com/iyunix/go-granny/internal/services"
	"github.com/iyunix/go-granny/internal/services/ai"
)

// fakeProvider replays fragments, then returns err.
type fakeProvider struct {
	fragments []ai.Fragment
	err       error
	block     bool // wait for ctx instead of streaming

	mu       sync.Mutex
	requests []ai.ChatRequest
	sent     int
}

func (p *fakeProvider) Name() string                          { return "fake" }
func (p *fakeProvider) HealthCheck(ctx context.Context) error { return nil }

func (p *fakeProvider) StreamChat(ctx context.Context, req ai.ChatRequest, onFragment ai.FragmentHandler) error {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	for _, f := range p.fragments {
		p.sent++
		if !onFragment(f) {
			return nil
		}
	}
	return p.err
}

type fakeRecorder struct {
	mu        sync.Mutex
	exchanges []domain.Exchange
	err       error
}

func (r *fakeRecorder) Create(ctx context.Context, e *domain.Exchange) (*domain.Exchange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.exchanges = append(r.exchanges, *e)
	return e, nil
}

func text(s string) ai.Fragment {
	return ai.Fragment{Message: &ai.FragmentMessage{Content: s}}
}

func testProxyConfig() *Config {
	cfg := DefaultConfig()
	cfg.Model = "granny"
	return cfg
}

func newTestProxy(t *testing.T, provider ai.StreamProvider, recorder ExchangeRecorder) *ProxyService {
	t.Helper()
	s, err := NewProxyService(testProxyConfig(), provider, recorder, &services.NoOpLogger{})
	require.NoError(t, err)
	return s
}

var history = []domain.HistoryEntry{
	{Content: "persona", Role: domain.RoleSystem},
	{Content: "How you keepin'?", Role: domain.RoleUser},
}

func TestRespond_DoneFragment(t *testing.T) {
	provider := &fakeProvider{fragments: []ai.Fragment{
		text("Hel"),
		text("lo"),
		{Done: true, TotalDuration: json.RawMessage("5"), EvalCount: json.RawMessage("2")},
		text(" ignored"),
	}}
	s := newTestProxy(t, provider, nil)

	resp := s.Respond(context.Background(), history)

	assert.True(t, resp.Success)
	assert.Equal(t, "Hello", resp.Response)
	assert.Empty(t, resp.Error)
	require.NotNil(t, resp.Metadata)
	assert.Equal(t, 3, provider.sent, "reading stops at done")

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"Hello","success":true,"metadata":{"total_duration":5,"eval_count":2}}`, string(body))
}

func TestRespond_ForwardsModelAndHistory(t *testing.T) {
	provider := &fakeProvider{fragments: []ai.Fragment{{Done: true}}}
	s := newTestProxy(t, provider, nil)

	s.Respond(context.Background(), history)

	require.Len(t, provider.requests, 1)
	assert.Equal(t, "granny", provider.requests[0].Model)
	assert.Equal(t, history, provider.requests[0].Messages)
}

func TestRespond_DoneWithoutStatistics(t *testing.T) {
	s := newTestProxy(t, &fakeProvider{fragments: []ai.Fragment{text("hi"), {Done: true}}}, nil)

	resp := s.Respond(context.Background(), history)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"hi","success":true,"metadata":{}}`, string(body))
}

func TestRespond_StreamEndsWithoutDone(t *testing.T) {
	s := newTestProxy(t, &fakeProvider{fragments: []ai.Fragment{text("partial "), text("answer")}}, nil)

	resp := s.Respond(context.Background(), history)

	assert.True(t, resp.Success)
	assert.Equal(t, "partial answer", resp.Response)
	assert.Nil(t, resp.Metadata)
}

func TestRespond_EmptyStream(t *testing.T) {
	s := newTestProxy(t, &fakeProvider{}, nil)

	resp := s.Respond(context.Background(), history)

	assert.True(t, resp.Success)
	assert.Equal(t, EmptyResponseMessage, resp.Response)
}

func TestRespond_UpstreamFailure(t *testing.T) {
	upstreamErr := ai.NewStatusError("chat", http.StatusInternalServerError)
	s := newTestProxy(t, &fakeProvider{fragments: []ai.Fragment{text("lost")}, err: upstreamErr}, nil)

	resp := s.Respond(context.Background(), history)

	assert.False(t, resp.Success)
	assert.Contains(t, DefaultFallbackResponses, resp.Response)
	assert.Contains(t, resp.Error, "API call failed with status: 500")
	assert.Nil(t, resp.Metadata)
}

func TestRespond_Timeout(t *testing.T) {
	cfg := testProxyConfig()
	cfg.Timeout = 20 * time.Millisecond
	s, err := NewProxyService(cfg, &fakeProvider{block: true}, nil, &services.NoOpLogger{})
	require.NoError(t, err)

	completion, err := s.Complete(context.Background(), history)
	assert.Nil(t, completion)
	var chatErr *ChatError
	require.True(t, errors.As(err, &chatErr))
	assert.Equal(t, ErrTypeTimeout, chatErr.Type)

	resp := s.Respond(context.Background(), history)
	assert.False(t, resp.Success)
	assert.Contains(t, DefaultFallbackResponses, resp.Response)
}

func TestRespond_CallerCancellation(t *testing.T) {
	s := newTestProxy(t, &fakeProvider{block: true}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Complete(ctx, history)

	var chatErr *ChatError
	require.True(t, errors.As(err, &chatErr))
	assert.Equal(t, ErrTypeStreaming, chatErr.Type)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFallback_UsesEveryReply(t *testing.T) {
	s := newTestProxy(t, &fakeProvider{}, nil)

	seen := make(map[string]bool)
	for i := 0; i < 300; i++ {
		resp := s.Fallback(errors.New("boom"))
		assert.False(t, resp.Success)
		assert.Equal(t, "boom", resp.Error)
		seen[resp.Response] = true
	}
	assert.Len(t, seen, len(DefaultFallbackResponses))
}

func TestFallback_Deterministic(t *testing.T) {
	s := newTestProxy(t, &fakeProvider{}, nil)
	s.pick = func(n int) int { return n - 1 }

	resp := s.Fallback(nil)
	assert.Equal(t, DefaultFallbackResponses[2], resp.Response)
	assert.Empty(t, resp.Error)
}

func TestRespond_RecordsExchange(t *testing.T) {
	recorder := &fakeRecorder{}
	provider := &fakeProvider{fragments: []ai.Fragment{
		text("Hello"),
		{Done: true, TotalDuration: json.RawMessage("5"), EvalCount: json.RawMessage("2")},
	}}
	s := newTestProxy(t, provider, recorder)

	s.Respond(context.Background(), history)
	s.Respond(context.Background(), history)

	require.Len(t, recorder.exchanges, 2)
	e := recorder.exchanges[0]
	assert.Equal(t, "granny", e.Model)
	assert.Equal(t, 2, e.MessageCount)
	assert.Equal(t, 5, e.ResponseLength)
	assert.True(t, e.Success)
	assert.Equal(t, "5", e.TotalDuration)
	assert.Equal(t, "2", e.EvalCount)
}

func TestRespond_RecorderFailureIgnored(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("disk full")}
	s := newTestProxy(t, &fakeProvider{fragments: []ai.Fragment{text("ok"), {Done: true}}}, recorder)

	resp := s.Respond(context.Background(), history)
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Response)
}

func TestNewProxyService_Validation(t *testing.T) {
	_, err := NewProxyService(nil, &fakeProvider{}, nil, &services.NoOpLogger{})
	assert.Error(t, err)

	_, err = NewProxyService(DefaultConfig(), &fakeProvider{}, nil, &services.NoOpLogger{})
	assert.Error(t, err, "model is required")

	_, err = NewProxyService(testProxyConfig(), nil, nil, &services.NoOpLogger{})
	assert.Error(t, err)
}

// End to end through the Ollama provider against a fake upstream.
func TestRespond_OllamaUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, line := range []string{
			`{"message":{"content":"Hel"}}`,
			`this is not json`,
			`{"message":{"content":"lo"}}`,
			`{"done":true,"total_duration":5,"eval_count":2}`,
		} {
			_, _ = w.Write([]byte(line + "\n"))
			flusher.Flush()
		}
	}))
	defer srv.Close()

	aiCfg := ai.DefaultConfig()
	aiCfg.BaseURL = srv.URL
	aiCfg.Model = "granny"
	provider := ai.NewOllamaProvider(aiCfg, srv.Client(), &services.NoOpLogger{})
	s := newTestProxy(t, provider, nil)

	resp := s.Respond(context.Background(), history)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"response":"Hello","success":true,"metadata":{"total_duration":5,"eval_count":2}}`, string(body))
}
