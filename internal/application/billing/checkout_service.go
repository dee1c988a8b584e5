package billing

import (
	"context"
	"errors"

	"github.com/fub-assistant/backend/internal/domain/account"
	"github.com/fub-assistant/backend/internal/domain/shared"
	"github.com/fub-assistant/backend/internal/infrastructure/billing"
	"go.uber.org/zap"
)

// CheckoutGateway creates Stripe checkout and billing portal sessions
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, input billing.CreateCheckoutSessionInput) (*billing.CreateCheckoutSessionOutput, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
}

// CheckoutService starts subscription checkouts and opens the billing
// portal for accounts that already have a Stripe customer
type CheckoutService struct {
	accounts account.Repository
	gateway  CheckoutGateway
	logger   *zap.Logger
}

// CheckoutServiceConfig contains configuration for CheckoutService
type CheckoutServiceConfig struct {
	Accounts account.Repository
	Gateway  CheckoutGateway
	Logger   *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cfg CheckoutServiceConfig) *CheckoutService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		accounts: cfg.Accounts,
		gateway:  cfg.Gateway,
		logger:   logger,
	}
}

// StartCheckoutInput is a request to begin a subscription checkout
type StartCheckoutInput struct {
	AccountID     int64
	CustomerEmail string
}

// StartCheckoutResult points the widget at the hosted checkout page
type StartCheckoutResult struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// StartCheckout creates a subscription checkout session for the account.
// An existing Stripe customer is reused so Stripe does not create
// duplicates when an account re-subscribes.
func (s *CheckoutService) StartCheckout(ctx context.Context, input StartCheckoutInput) (*StartCheckoutResult, error) {
	acc, err := s.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		// Stale session token for a deleted account
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}

	out, err := s.gateway.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionInput{
		FUBAccountID:  acc.FUBAccountID,
		CustomerID:    acc.StripeCustomerID,
		CustomerEmail: input.CustomerEmail,
	})
	if err != nil {
		s.logger.Error("Failed to start checkout",
			zap.Int64("account_id", acc.ID),
			zap.Error(err))
		return nil, shared.ErrUpstreamUnavailable
	}

	return &StartCheckoutResult{
		SessionID:   out.SessionID,
		CheckoutURL: out.URL,
	}, nil
}

// PortalResult points the widget at the hosted billing portal
type PortalResult struct {
	PortalURL string `json:"portal_url"`
}

// OpenPortal creates a billing portal session. The account must already
// have a Stripe customer from a completed checkout.
func (s *CheckoutService) OpenPortal(ctx context.Context, accountID int64) (*PortalResult, error) {
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		// Stale session token for a deleted account
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}

	if acc.StripeCustomerID == "" {
		return nil, shared.NewDomainError("NO_BILLING_PROFILE", "No billing profile exists for this account yet")
	}

	url, err := s.gateway.CreatePortalSession(ctx, acc.StripeCustomerID)
	if err != nil {
		s.logger.Error("Failed to open billing portal",
			zap.Int64("account_id", acc.ID),
			zap.Error(err))
		return nil, shared.ErrUpstreamUnavailable
	}

	return &PortalResult{PortalURL: url}, nil
}
