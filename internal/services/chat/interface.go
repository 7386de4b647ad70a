// G:\go_granny\internal\services\chat\interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-granny/internal/domain"
)

// ExchangeRecorder stores a summary of every proxied exchange.
type ExchangeRecorder interface {
	Create(ctx context.Context, exchange *domain.Exchange) (*domain.Exchange, error)
}

// Proxy answers a conversation history with the model's full reply.
type Proxy interface {
	Respond(ctx context.Context, history []domain.HistoryEntry) *Response
	Fallback(err error) *Response
}
