package chat

import (
	"strings"
	"time"

	"github.com/fub-assistant/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MaxQuestionLength bounds what an agent may type into the widget
const MaxQuestionLength = 1000

// Message is a single line of the conversation an agent has about a lead
type Message struct {
	ID        uuid.UUID
	AccountID int64
	PersonID  string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// NewMessage creates a validated chat message
func NewMessage(accountID int64, personID string, role Role, content string) (*Message, error) {
	if accountID <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account id is required")
	}
	personID = strings.TrimSpace(personID)
	if personID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Person id is required")
	}
	if role != RoleUser && role != RoleAssistant {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown message role")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Message content is required")
	}
	if role == RoleUser && len(content) > MaxQuestionLength {
		return nil, shared.NewDomainError("INVALID_INPUT", "Question exceeds the maximum length")
	}
	return &Message{
		ID:        uuid.New(),
		AccountID: accountID,
		PersonID:  personID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}, nil
}
