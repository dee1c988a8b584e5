package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fub-assistant/backend/internal/domain/account"
	"github.com/fub-assistant/backend/internal/domain/chat"
	"github.com/fub-assistant/backend/internal/domain/shared"
	"github.com/fub-assistant/backend/internal/infrastructure/fub"
	"github.com/fub-assistant/backend/internal/infrastructure/ratelimit"
	"go.uber.org/zap"
)

// apologyAnswer is returned when the model is unreachable. The agent keeps
// a working widget even while the AI provider is down.
const apologyAnswer = "- Sorry, I could not generate a suggestion right now. Please try again in a moment."

// Completer produces a follow-up suggestion from a question and lead context
type Completer interface {
	Suggest(ctx context.Context, question, leadContext string) (string, error)
}

// CRM fetches lead data from Follow Up Boss
type CRM interface {
	GetPerson(ctx context.Context, tokens fub.Tokens, personID string) (*fub.Person, fub.Tokens, error)
	ListActivities(ctx context.Context, tokens fub.Tokens, personID string, limit int) ([]fub.Activity, fub.Tokens, error)
}

// ContextCache caches assembled lead summaries
type ContextCache interface {
	Get(ctx context.Context, personID string) (string, bool, error)
	Set(ctx context.Context, personID, summary string) error
}

// Limits holds the per-window request budgets for the chat endpoint
type Limits struct {
	AccountRequests int
	IPRequests      int
	Window          time.Duration
}

// Service answers agent questions about leads
type Service struct {
	accounts      account.Repository
	messages      chat.Repository
	limiter       ratelimit.Limiter
	crm           CRM
	cache         ContextCache
	completer     Completer
	limits        Limits
	activityLimit int
	logger        *zap.Logger
}

// ServiceConfig contains configuration for the chat Service
type ServiceConfig struct {
	Accounts      account.Repository
	Messages      chat.Repository
	Limiter       ratelimit.Limiter
	CRM           CRM
	Cache         ContextCache
	Completer     Completer
	Limits        Limits
	ActivityLimit int
	Logger        *zap.Logger
}

// NewService creates a new chat service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Limits.AccountRequests <= 0 {
		cfg.Limits.AccountRequests = 10
	}
	if cfg.Limits.IPRequests <= 0 {
		cfg.Limits.IPRequests = 100
	}
	if cfg.Limits.Window <= 0 {
		cfg.Limits.Window = time.Minute
	}
	if cfg.ActivityLimit <= 0 {
		cfg.ActivityLimit = 20
	}
	return &Service{
		accounts:      cfg.Accounts,
		messages:      cfg.Messages,
		limiter:       cfg.Limiter,
		crm:           cfg.CRM,
		cache:         cfg.Cache,
		completer:     cfg.Completer,
		limits:        cfg.Limits,
		activityLimit: cfg.ActivityLimit,
		logger:        logger,
	}
}

// AskInput is one agent question about a lead
type AskInput struct {
	AccountID int64
	PersonID  string
	Question  string
	ClientIP  string
}

// AskResult is the formatted suggestion for the widget
type AskResult struct {
	Answer      string    `json:"answer"`
	PersonID    string    `json:"person_id"`
	CreatedAt   time.Time `json:"created_at"`
	FromContext bool      `json:"from_context"`
}

// Ask runs the full suggestion flow: entitlement gate, rate limits, lead
// context assembly, completion, formatting and persistence.
func (s *Service) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	acc, err := s.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		// A valid session token for an account that no longer exists is a
		// stale credential, not a missing resource.
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !acc.IsEntitled() {
		return nil, shared.ErrSubscriptionRequired
	}

	if err := s.enforceLimits(ctx, acc.ID, input.ClientIP); err != nil {
		return nil, err
	}

	question, err := chat.NewMessage(acc.ID, input.PersonID, chat.RoleUser, input.Question)
	if err != nil {
		return nil, err
	}

	leadContext, cached := s.leadContext(ctx, acc, input.PersonID)

	raw, err := s.completer.Suggest(ctx, question.Content, leadContext)
	answer := FormatAnswer(raw)
	if err != nil || answer == "" {
		if err != nil {
			s.logger.Error("Completion failed, sending fallback answer",
				zap.Int64("account_id", acc.ID),
				zap.String("person_id", input.PersonID),
				zap.Error(err))
		}
		answer = apologyAnswer
	}

	reply, err := chat.NewMessage(acc.ID, input.PersonID, chat.RoleAssistant, answer)
	if err != nil {
		return nil, err
	}

	// Persistence failures must not lose the answer the agent is waiting on
	if err := s.messages.Save(ctx, question, reply); err != nil {
		s.logger.Error("Failed to persist chat messages",
			zap.Int64("account_id", acc.ID),
			zap.String("person_id", input.PersonID),
			zap.Error(err))
	}

	return &AskResult{
		Answer:      answer,
		PersonID:    input.PersonID,
		CreatedAt:   reply.CreatedAt,
		FromContext: cached,
	}, nil
}

// History returns the stored conversation about a lead, newest first
func (s *Service) History(ctx context.Context, accountID int64, personID string, limit, offset int) ([]chat.Message, int64, error) {
	if personID == "" {
		return nil, 0, shared.ErrInvalidInput
	}
	return s.messages.ListByPerson(ctx, accountID, personID, limit, offset)
}

// enforceLimits applies the per-account and per-IP sliding windows.
// Keys carry a chat_ prefix so the chat budget is counted separately from
// the global per-IP middleware window, which shares the same limiter.
func (s *Service) enforceLimits(ctx context.Context, accountID int64, clientIP string) error {
	allowed, err := s.limiter.Allow(ctx, fmt.Sprintf("chat_account:%d", accountID), s.limits.AccountRequests, s.limits.Window)
	if err == nil && !allowed {
		return shared.ErrRateLimited
	}

	if clientIP != "" {
		allowed, err = s.limiter.Allow(ctx, "chat_ip:"+clientIP, s.limits.IPRequests, s.limits.Window)
		if err == nil && !allowed {
			return shared.ErrRateLimited
		}
	}
	return nil
}

// leadContext returns the cached lead summary or assembles it from the CRM.
// A CRM outage degrades to an uncontextualized answer rather than an error.
func (s *Service) leadContext(ctx context.Context, acc *account.Account, personID string) (string, bool) {
	if s.cache != nil {
		if summary, hit, err := s.cache.Get(ctx, personID); err == nil && hit {
			return summary, true
		} else if err != nil {
			s.logger.Warn("Lead cache unavailable", zap.Error(err))
		}
	}

	tokens := fub.Tokens{AccessToken: acc.FUBAccessToken, RefreshToken: acc.FUBRefreshToken}

	person, tokens, err := s.crm.GetPerson(ctx, tokens, personID)
	if err != nil {
		s.persistRotatedTokens(ctx, acc, tokens)
		s.logger.Warn("Failed to fetch lead from CRM, answering without context",
			zap.Int64("account_id", acc.ID),
			zap.String("person_id", personID),
			zap.Error(err))
		return "", false
	}

	activities, tokens, err := s.crm.ListActivities(ctx, tokens, personID, s.activityLimit)
	if err != nil {
		if !errors.Is(err, fub.ErrNotFound) {
			s.logger.Warn("Failed to fetch lead activities",
				zap.String("person_id", personID),
				zap.Error(err))
		}
		activities = nil
	}
	s.persistRotatedTokens(ctx, acc, tokens)

	summary := SummarizeLead(person, activities)
	if summary != "" && s.cache != nil {
		if err := s.cache.Set(ctx, personID, summary); err != nil {
			s.logger.Warn("Failed to cache lead summary", zap.Error(err))
		}
	}
	return summary, false
}

// persistRotatedTokens saves the token pair when the CRM client refreshed it
func (s *Service) persistRotatedTokens(ctx context.Context, acc *account.Account, tokens fub.Tokens) {
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
