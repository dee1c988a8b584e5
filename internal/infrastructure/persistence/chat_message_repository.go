package persistence

import (
	"context"

	"github.com/fub-assistant/backend/internal/domain/chat"
	"github.com/fub-assistant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormChatMessageRepository implements chat.Repository using GORM
type GormChatMessageRepository struct {
	db *gorm.DB
}

// NewGormChatMessageRepository creates a new GormChatMessageRepository
func NewGormChatMessageRepository(db *gorm.DB) *GormChatMessageRepository {
	return &GormChatMessageRepository{db: db}
}

// Save persists one or more messages in order
func (r *GormChatMessageRepository) Save(ctx context.Context, messages ...*chat.Message) error {
	if len(messages) == 0 {
		return nil
	}
	rows := make([]models.ChatMessageModel, len(messages))
	for i, msg := range messages {
		rows[i].FromDomain(msg)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListByPerson returns the newest messages for a lead conversation,
// most recent first, along with the total count
func (r *GormChatMessageRepository) ListByPerson(ctx context.Context, accountID int64, personID string, limit, offset int) ([]chat.Message, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&models.ChatMessageModel{}).
		Where("account_id = ? AND person_id = ?", accountID, personID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ChatMessageModel
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	messages := make([]chat.Message, len(rows))
	for i, row := range rows {
		messages[i] = *row.ToDomain()
	}
	return messages, total, nil
}
