package models

import (
	"time"

	"github.com/fub-assistant/backend/internal/domain/chat"
	"github.com/google/uuid"
)

// ChatMessageModel maps the chat_messages table
type ChatMessageModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AccountID int64     `gorm:"column:account_id;not null;index:idx_chat_messages_conversation"`
	PersonID  string    `gorm:"column:person_id;not null;index:idx_chat_messages_conversation"`
	Role      string    `gorm:"column:role;not null"`
	Content   string    `gorm:"column:content;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName specifies the table name
func (ChatMessageModel) TableName() string {
	return "chat_messages"
}

// ToDomain converts the model to a domain message
func (m *ChatMessageModel) ToDomain() *chat.Message {
	return &chat.Message{
		ID:        m.ID,
		AccountID: m.AccountID,
		PersonID:  m.PersonID,
		Role:      chat.Role(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the model from a domain message
func (m *ChatMessageModel) FromDomain(msg *chat.Message) {
	m.ID = msg.ID
	m.AccountID = msg.AccountID
	m.PersonID = msg.PersonID
	m.Role = string(msg.Role)
	m.Content = msg.Content
	m.CreatedAt = msg.CreatedAt
}
