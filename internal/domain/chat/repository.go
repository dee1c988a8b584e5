package chat

import "context"

// Repository defines the persistence interface for chat messages
type Repository interface {
	// Save persists one or more messages in order
	Save(ctx context.Context, messages ...*Message) error

	// ListByPerson returns the newest messages for a lead conversation,
	// most recent first, along with the total count
	ListByPerson(ctx context.Context, accountID int64, personID string, limit, offset int) ([]Message, int64, error)
}
