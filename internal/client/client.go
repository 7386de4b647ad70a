// Package client talks to a running Granny server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iyunix/go-granny/internal/domain"
	"github.com/iyunix/go-granny/internal/services/chat"
)

// ClientError describes a failed call to the server.
type ClientError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *ClientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Chat posts a conversation history to /api/chat. Upstream failures come back
// as a normal Response with Success=false; only transport and protocol
// problems are returned as errors.
func (c *Client) Chat(ctx context.Context, history []domain.HistoryEntry, limit int) (*chat.Response, error) {
	body, err := json.Marshal(chat.Request{ConversationHistory: history, ConversationLimit: limit})
	if err != nil {
		return nil, &ClientError{Op: "chat", Message: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Op: "chat", Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ClientError{Op: "chat", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ClientError{Op: "chat", StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	var out chat.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ClientError{Op: "chat", Message: "decode response", Err: err}
	}
	return &out, nil
}
