package exchange

import (
	"context"

	"github.com/iyunix/go-granny/internal/domain"
)

// ExchangeRepository handles exchange log operations.
type ExchangeRepository interface {
	Create(ctx context.Context, exchange *domain.Exchange) (*domain.Exchange, error)
	FindRecent(ctx context.Context, limit int) ([]domain.Exchange, error)
	Count(ctx context.Context) (total int64, failed int64, err error)
}
