package auth

import (
	"context"
	"errors"

	"github.com/fub-assistant/backend/internal/domain/account"
	"github.com/fub-assistant/backend/internal/domain/shared"
	"github.com/fub-assistant/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Service handles the iframe embed handshake and widget session tokens
type Service struct {
	accounts account.Repository
	verifier *auth.EmbedVerifier
	tokens   *auth.JWTService
	logger   *zap.Logger
}

// ServiceConfig contains configuration for the auth Service
type ServiceConfig struct {
	Accounts account.Repository
	Verifier *auth.EmbedVerifier
	Tokens   *auth.JWTService
	Logger   *zap.Logger
}

// NewService creates a new auth service
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		accounts: cfg.Accounts,
		verifier: cfg.Verifier,
		tokens:   cfg.Tokens,
		logger:   logger,
	}
}

// IframeLoginInput is the signed context handed to the widget by FUB
type IframeLoginInput struct {
	Context   string
	Signature string
}

// IframeLoginResult is the session minted for a verified embed
type IframeLoginResult struct {
	Token              *auth.SessionToken
	AccountID          int64
	FUBAccountID       string
	PersonID           string
	SubscriptionStatus account.SubscriptionStatus
	Entitled           bool
}

// IframeLogin verifies the signed embed context, upserts the account for
// the FUB tenant, and mints a widget session token.
func (s *Service) IframeLogin(ctx context.Context, input IframeLoginInput) (*IframeLoginResult, error) {
	ec, err := s.verifier.VerifyAndDecode(input.Context, input.Signature)
	if err != nil {
		if errors.Is(err, auth.ErrMalformedContext) {
			return nil, shared.ErrInvalidInput
		}
		s.logger.Warn("Rejected iframe embed with invalid signature")
		return nil, shared.ErrUnauthorized
	}

	acc, err := s.accounts.FindByFUBAccountID(ctx, ec.Account.ID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		acc, err = account.NewAccount(ec.Account.ID)
		if err != nil {
			return nil, err
		}
		if err := s.accounts.Create(ctx, acc); err != nil {
			return nil, err
		}
		s.logger.Info("Provisioned account for new FUB tenant",
			zap.String("fub_account_id", acc.FUBAccountID),
			zap.Int64("account_id", acc.ID))
	}

	token, err := s.tokens.GenerateSessionToken(acc.ID, acc.FUBAccountID)
	if err != nil {
		return nil, err
	}

	return &IframeLoginResult{
		Token:              token,
		AccountID:          acc.ID,
		FUBAccountID:       acc.FUBAccountID,
		PersonID:           ec.Person.ID,
		SubscriptionStatus: acc.SubscriptionStatus,
		Entitled:           acc.IsEntitled(),
	}, nil
}

// Refresh mints a fresh session token for an already authenticated account
func (s *Service) Refresh(ctx context.Context, accountID int64) (*auth.SessionToken, error) {
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		// Stale session token for a deleted account
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	return s.tokens.GenerateSessionToken(acc.ID, acc.FUBAccountID)
}
