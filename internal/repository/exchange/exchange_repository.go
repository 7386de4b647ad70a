// G:\go_granny\internal\repository\exchange\exchange_repository.go

package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/go-granny/internal/domain"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 500
	maxErrorLength     = 1000
)

// Logger is the subset of the service logger used here.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

type gormExchangeRepository struct {
	db     *gorm.DB
	logger Logger
}

// OpenInMemory opens a private in-memory SQLite database and migrates the
// exchange table. Nothing outlives the process.
func OpenInMemory() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open exchange log: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open exchange log: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.Exchange{}); err != nil {
		return nil, fmt.Errorf("migrate exchange log: %w", err)
	}
	return db, nil
}

func NewExchangeRepository(db *gorm.DB, logger Logger) ExchangeRepository {
	return &gormExchangeRepository{db: db, logger: logger}
}

// Create validates and stores one exchange.
func (r *gormExchangeRepository) Create(ctx context.Context, exchange *domain.Exchange) (*domain.Exchange, error) {
	if err := r.validateExchangeInput(exchange); err != nil {
		r.logger.Error("[ExchangeRepository] Validation failed", "error", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if len(exchange.Error) > maxErrorLength {
		exchange.Error = exchange.Error[:maxErrorLength]
	}

	if err := r.db.WithContext(ctx).Create(exchange).Error; err != nil {
		r.logger.Error("[ExchangeRepository] Database error during exchange creation", "model", exchange.Model, "error", err)
		return nil, errors.New("database error creating exchange")
	}

	r.logger.Debug("[ExchangeRepository] Exchange recorded", "id", exchange.ID, "success", exchange.Success)
	return exchange, nil
}

// FindRecent returns the newest exchanges first.
func (r *gormExchangeRepository) FindRecent(ctx context.Context, limit int) ([]domain.Exchange, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	var exchanges []domain.Exchange
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&exchanges).Error
	if err != nil {
		r.logger.Error("[ExchangeRepository] Database error finding recent exchanges", "error", err)
		return nil, errors.New("database error fetching exchanges")
	}

	return exchanges, nil
}

// Count reports how many exchanges were recorded and how many of them failed.
func (r *gormExchangeRepository) Count(ctx context.Context) (int64, int64, error) {
	var total, failed int64
	if err := r.db.WithContext(ctx).Model(&domain.Exchange{}).Count(&total).Error; err != nil {
		r.logger.Error("[ExchangeRepository] Database error counting exchanges", "error", err)
		return 0, 0, errors.New("database error counting exchanges")
	}
	if err := r.db.WithContext(ctx).Model(&domain.Exchange{}).Where("success = ?", false).Count(&failed).Error; err != nil {
		r.logger.Error("[ExchangeRepository] Database error counting failed exchanges", "error", err)
		return 0, 0, errors.New("database error counting exchanges")
	}
	return total, failed, nil
}

func (r *gormExchangeRepository) validateExchangeInput(exchange *domain.Exchange) error {
	if exchange == nil {
		return errors.New("exchange cannot be nil")
	}
	if exchange.Model == "" {
		return errors.New("model is required")
	}
	if exchange.MessageCount < 0 || exchange.ResponseLength < 0 {
		return errors.New("counts must not be negative")
	}
	return nil
}
