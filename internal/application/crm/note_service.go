package crm

import (
	"context"
	"errors"
	"strings"

	"github.com/fub-assistant/backend/internal/domain/account"
	"github.com/fub-assistant/backend/internal/domain/shared"
	"github.com/fub-assistant/backend/internal/infrastructure/fub"
	"go.uber.org/zap"
)

// defaultNoteSubject labels notes the assistant writes back to the CRM
const defaultNoteSubject = "AI Assistant Suggestion"

// maxNoteLength bounds the note body pushed to FUB. It matches the request
// binding limit so the cap holds for callers that bypass the HTTP layer.
const maxNoteLength = 2000

// NoteWriter creates notes in Follow Up Boss
type NoteWriter interface {
	CreateNote(ctx context.Context, tokens fub.Tokens, personID, subject, body string) (*fub.Note, fub.Tokens, error)
}

// NoteService saves assistant suggestions as CRM notes on the lead
type NoteService struct {
	accounts account.Repository
	writer   NoteWriter
	logger   *zap.Logger
}

// NoteServiceConfig contains configuration for NoteService
type NoteServiceConfig struct {
	Accounts account.Repository
	Writer   NoteWriter
	Logger   *zap.Logger
}

// NewNoteService creates a new NoteService
func NewNoteService(cfg NoteServiceConfig) *NoteService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{
		accounts: cfg.Accounts,
		writer:   cfg.Writer,
		logger:   logger,
	}
}

// CreateNoteInput is a request to push a suggestion onto the lead timeline
type CreateNoteInput struct {
	AccountID int64
	PersonID  string
	Subject   string
	Body      string
}

// CreateNoteResult identifies the created note
type CreateNoteResult struct {
	NoteID   int64  `json:"note_id"`
	PersonID string `json:"person_id"`
}

// CreateNote writes the note through the account's FUB connection.
// Rotated OAuth tokens are persisted before returning.
func (s *NoteService) CreateNote(ctx context.Context, input CreateNoteInput) (*CreateNoteResult, error) {
	input.PersonID = strings.TrimSpace(input.PersonID)
	input.Body = strings.TrimSpace(input.Body)
	if input.PersonID == "" || input.Body == "" {
		return nil, shared.ErrInvalidInput
	}
	if len(input.Body) > maxNoteLength {
		input.Body = input.Body[:maxNoteLength]
	}
	if input.Subject == "" {
		input.Subject = defaultNoteSubject
	}

	acc, err := s.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		// Stale session token for a deleted account
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !acc.IsEntitled() {
		return nil, shared.ErrSubscriptionRequired
	}

	tokens := fub.Tokens{AccessToken: acc.FUBAccessToken, RefreshToken: acc.FUBRefreshToken}

	note, tokens, err := s.writer.CreateNote(ctx, tokens, input.PersonID, input.Subject, input.Body)
	s.persistRotatedTokens(ctx, acc, tokens)
	if err != nil {
		switch {
		case errors.Is(err, fub.ErrNotFound):
			return nil, shared.ErrNotFound
		case errors.Is(err, fub.ErrAuthentication):
			return nil, shared.NewDomainError("CRM_DISCONNECTED", "The Follow Up Boss connection needs to be re-authorized")
		default:
			s.logger.Error("Failed to create CRM note",
				zap.Int64("account_id", acc.ID),
				zap.String("person_id", input.PersonID),
				zap.Error(err))
			return nil, shared.ErrUpstreamUnavailable
		}
	}

	s.logger.Info("Created CRM note",
		zap.Int64("account_id", acc.ID),
		zap.String("person_id", input.PersonID),
		zap.Int64("note_id", note.ID))

	return &CreateNoteResult{
		NoteID:   note.ID,
		PersonID: input.PersonID,
	}, nil
}

func (s *NoteService) persistRotatedTokens(ctx context.Context, acc *account.Account, tokens fub.Tokens) {
	if tokens.AccessToken == acc.FUBAccessToken || tokens.AccessToken == "" {
		return
	}
	acc.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	if err := s.accounts.Save(ctx, acc); err != nil {
		s.logger.Error("Failed to persist rotated FUB tokens",
			zap.Int64("account_id", acc.ID),
			zap.Error(err))
	}
}
