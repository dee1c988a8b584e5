package models

import "time"

// RateLimitEntryModel maps the rate_limit_entries table. It backs the
// database fallback limiter used when Redis is unavailable.
type RateLimitEntryModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Identifier   string    `gorm:"column:identifier;not null;index:idx_rate_limit_window,unique"`
	WindowStart  time.Time `gorm:"column:window_start;not null;index:idx_rate_limit_window,unique"`
	RequestCount int       `gorm:"column:request_count;not null;default:1"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

// TableName specifies the table name
func (RateLimitEntryModel) TableName() string {
	return "rate_limit_entries"
}
