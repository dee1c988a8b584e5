package persistence

import (
	"context"
	"time"

	"github.com/fub-assistant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRateLimitRepository tracks fixed-window request counters in Postgres.
// It backs the fallback limiter used when Redis is unreachable.
type GormRateLimitRepository struct {
	db *gorm.DB
}

// NewGormRateLimitRepository creates a new GormRateLimitRepository
func NewGormRateLimitRepository(db *gorm.DB) *GormRateLimitRepository {
	return &GormRateLimitRepository{db: db}
}

// Increment bumps the counter for an identifier within the window starting
// at windowStart and returns the updated count.
func (r *GormRateLimitRepository) Increment(ctx context.Context, identifier string, windowStart time.Time) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO rate_limit_entries (identifier, window_start, request_count, created_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (identifier, window_start)
		DO UPDATE SET request_count = rate_limit_entries.request_count + 1
		RETURNING request_count`,
		identifier, windowStart, time.Now()).
		Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Prune deletes counters whose window started before the cutoff
func (r *GormRateLimitRepository) Prune(ctx context.Context, cutoff time.Time) error {
	return r.db.WithContext(ctx).
		Where("window_start < ?", cutoff).
		Delete(&models.RateLimitEntryModel{}).Error
}
