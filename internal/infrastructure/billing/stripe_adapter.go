package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	portalsession "github.com/stripe/stripe-go/v81/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	"go.uber.org/zap"
)

// StripeAdapter implements Stripe billing operations for the subscription flow
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// CreateCheckoutSessionInput contains input for starting a subscription checkout
type CreateCheckoutSessionInput struct {
	FUBAccountID  string
	CustomerID    string // optional, reuses an existing Stripe customer
	CustomerEmail string // optional, prefills the checkout form
}

// CreateCheckoutSessionOutput contains the created checkout session
type CreateCheckoutSessionOutput struct {
	SessionID string
	URL       string
}

// CreateCheckoutSession starts a subscription-mode checkout for the monthly
// plan. The FUB account id rides along in metadata so the completion webhook
// can bind the resulting customer to the right account.
func (a *StripeAdapter) CreateCheckoutSession(ctx context.Context, input CreateCheckoutSessionInput) (*CreateCheckoutSessionOutput, error) {
	a.logger.Debug("Creating Stripe checkout session",
		zap.String("fub_account_id", input.FUBAccountID))

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(a.config.MonthlyPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(a.config.SuccessURL),
		CancelURL:  stripe.String(a.config.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("fub_account_id", input.FUBAccountID)

	if input.CustomerID != "" {
		params.Customer = stripe.String(input.CustomerID)
	} else if input.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(input.CustomerEmail)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		a.logger.Error("Failed to create checkout session",
			zap.String("fub_account_id", input.FUBAccountID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	a.logger.Info("Created Stripe checkout session",
		zap.String("fub_account_id", input.FUBAccountID),
		zap.String("session_id", sess.ID))

	return &CreateCheckoutSessionOutput{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

// CreatePortalSession opens a billing portal session for an existing customer
func (a *StripeAdapter) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", fmt.Errorf("stripe: customer id is required for portal session")
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(a.config.PortalReturnURL),
	}
	params.Context = ctx

	sess, err := portalsession.New(params)
	if err != nil {
		a.logger.Error("Failed to create billing portal session",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return "", fmt.Errorf("stripe: failed to create portal session: %w", err)
	}

	return sess.URL, nil
}
