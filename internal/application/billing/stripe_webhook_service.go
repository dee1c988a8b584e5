package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fub-assistant/backend/internal/domain/account"
	"github.com/fub-assistant/backend/internal/domain/shared"
	"github.com/fub-assistant/backend/internal/infrastructure/billing"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// StripeWebhookService handles Stripe webhook events
type StripeWebhookService struct {
	config   *billing.StripeConfig
	accounts account.Repository
	logger   *zap.Logger
}

// StripeWebhookServiceConfig contains configuration for StripeWebhookService
type StripeWebhookServiceConfig struct {
	Config   *billing.StripeConfig
	Accounts account.Repository
	Logger   *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(cfg StripeWebhookServiceConfig) *StripeWebhookService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeWebhookService{
		config:   cfg.Config,
		accounts: cfg.Accounts,
		logger:   logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies and processes a Stripe webhook event.
// A non-nil error with a non-nil result means the signature was valid
// but processing failed; callers still acknowledge those so Stripe
// does not retry indefinitely.
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		s.logger.Error("Failed to verify webhook signature",
			zap.Error(err))
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	s.logger.Info("Processing Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	switch event.Type {
	case "checkout.session.completed":
		err = s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		err = s.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		err = s.handleSubscriptionDeleted(ctx, event)
	case "invoice.payment_succeeded":
		err = s.handleInvoicePaymentSucceeded(ctx, event)
	case "invoice.payment_failed":
		err = s.handleInvoicePaymentFailed(ctx, event)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Message = "Event type not handled"
	}

	if err != nil {
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}

	return result, nil
}

// handleCheckoutCompleted handles checkout.session.completed events.
// The session metadata carries the FUB account id set when the checkout
// was created, which is how the new Stripe customer gets bound to an
// account.
func (s *StripeWebhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	fubAccountID := session.Metadata["fub_account_id"]
	if fubAccountID == "" {
		s.logger.Warn("Checkout session has no fub_account_id metadata, skipping",
			zap.String("session_id", session.ID))
		return nil
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}

	s.logger.Info("Handling checkout completed",
		zap.String("session_id", session.ID),
		zap.String("fub_account_id", fubAccountID),
		zap.String("customer_id", customerID))

	acc, err := s.accounts.FindByFUBAccountID(ctx, fubAccountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Note: ErrNotFound is not treated as an error because webhooks may
			// arrive before account provisioning is complete, or for accounts
			// not in our system. We acknowledge receipt to prevent Stripe retries.
			s.logger.Warn("Account not found for checkout session",
				zap.String("fub_account_id", fubAccountID))
			return nil
		}
		return fmt.Errorf("failed to find account: %w", err)
	}

	if customerID != "" {
		acc.AttachStripeCustomer(customerID)
	}
	acc.UpdateSubscriptionStatus(account.SubscriptionActive)

	if err := s.accounts.Save(ctx, acc); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info("Checkout completed processed successfully",
		zap.Int64("account_id", acc.ID),
		zap.String("customer_id", customerID))

	return nil
}

// handleSubscriptionUpdated handles customer.subscription.updated events
func (s *StripeWebhookService) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var subscription stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	customerID := ""
	if subscription.Customer != nil {
		customerID = subscription.Customer.ID
	}
	if customerID == "" {
		s.logger.Warn("Subscription has no customer ID, skipping",
			zap.String("subscription_id", subscription.ID))
		return nil
	}

	status := account.StatusFromStripe(string(subscription.Status))

	s.logger.Info("Handling subscription updated",
		zap.String("subscription_id", subscription.ID),
		zap.String("customer_id", customerID),
		zap.String("status", string(status)))

	return s.updateStatusByCustomer(ctx, customerID, status)
}

// handleSubscriptionDeleted handles customer.subscription.deleted events
func (s *StripeWebhookService) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var subscription stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	customerID := ""
	if subscription.Customer != nil {
		customerID = subscription.Customer.ID
	}
	if customerID == "" {
		s.logger.Warn("Subscription has no customer ID, skipping",
			zap.String("subscription_id", subscription.ID))
		return nil
	}

	s.logger.Info("Handling subscription deleted",
		zap.String("subscription_id", subscription.ID),
		zap.String("customer_id", customerID))

	return s.updateStatusByCustomer(ctx, customerID, account.SubscriptionCanceled)
}

// handleInvoicePaymentSucceeded handles invoice.payment_succeeded events
func (s *StripeWebhookService) handleInvoicePaymentSucceeded(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	customerID := ""
	if invoice.Customer != nil {
		customerID = invoice.Customer.ID
	}
	if customerID == "" {
		s.logger.Warn("Invoice has no customer ID, skipping",
			zap.String("invoice_id", invoice.ID))
		return nil
	}

	s.logger.Info("Handling invoice payment succeeded",
		zap.String("invoice_id", invoice.ID),
		zap.String("customer_id", customerID))

	return s.updateStatusByCustomer(ctx, customerID, account.SubscriptionActive)
}

// handleInvoicePaymentFailed handles invoice.payment_failed events
func (s *StripeWebhookService) handleInvoicePaymentFailed(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	customerID := ""
	if invoice.Customer != nil {
		customerID = invoice.Customer.ID
	}
	if customerID == "" {
		s.logger.Warn("Invoice has no customer ID, skipping",
			zap.String("invoice_id", invoice.ID))
		return nil
	}

	s.logger.Warn("Handling invoice payment failed",
		zap.String("invoice_id", invoice.ID),
		zap.String("customer_id", customerID))

	return s.updateStatusByCustomer(ctx, customerID, account.SubscriptionPastDue)
}

// updateStatusByCustomer looks up the account bound to a Stripe customer
// and transitions its subscription status. Unknown customers are
// acknowledged without error so Stripe does not retry.
func (s *StripeWebhookService) updateStatusByCustomer(ctx context.Context, customerID string, status account.SubscriptionStatus) error {
	acc, err := s.accounts.FindByStripeCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Account not found for Stripe customer",
				zap.String("customer_id", customerID))
			return nil
		}
		return fmt.Errorf("failed to find account: %w", err)
	}

	acc.UpdateSubscriptionStatus(status)

	if err := s.accounts.Save(ctx, acc); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info("Subscription status updated",
		zap.Int64("account_id", acc.ID),
		zap.String("status", string(status)))

	return nil
}
