package account

import (
	"strings"
	"time"

	"github.com/fub-assistant/backend/internal/domain/shared"
)

// SubscriptionStatus represents the billing state of an account
type SubscriptionStatus string

const (
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionUnpaid     SubscriptionStatus = "unpaid"
)

// IsEntitled reports whether the account may use paid features.
// Trials count as entitled until billing says otherwise.
func (s SubscriptionStatus) IsEntitled() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing
}

// StatusFromStripe maps a Stripe subscription status string to our
// representation. Unknown values map to incomplete.
func StatusFromStripe(s string) SubscriptionStatus {
	switch s {
	case "active":
		return SubscriptionActive
	case "trialing":
		return SubscriptionTrialing
	case "past_due":
		return SubscriptionPastDue
	case "canceled":
		return SubscriptionCanceled
	case "unpaid":
		return SubscriptionUnpaid
	case "incomplete", "incomplete_expired":
		return SubscriptionIncomplete
	default:
		return SubscriptionIncomplete
	}
}

// Account is one Follow Up Boss tenant that installed the assistant.
// Identified externally by the FUB account id carried in the embed context.
type Account struct {
	ID                 int64
	FUBAccountID       string
	SubscriptionStatus SubscriptionStatus
	FUBAccessToken     string
	FUBRefreshToken    string
	StripeCustomerID   string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewAccount creates an account for a freshly seen FUB tenant.
// New accounts start in a trial until a subscription is attached.
func NewAccount(fubAccountID string) (*Account, error) {
	fubAccountID = strings.TrimSpace(fubAccountID)
	if fubAccountID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "FUB account id is required")
	}
	now := time.Now()
	return &Account{
		FUBAccountID:       fubAccountID,
		SubscriptionStatus: SubscriptionTrialing,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// SetTokens stores the current FUB OAuth token pair.
// An empty refresh token keeps the previous one (FUB does not always rotate it).
func (a *Account) SetTokens(accessToken, refreshToken string) {
	a.FUBAccessToken = accessToken
	if refreshToken != "" {
		a.FUBRefreshToken = refreshToken
	}
	a.UpdatedAt = time.Now()
}

// AttachStripeCustomer binds the Stripe customer created at checkout
func (a *Account) AttachStripeCustomer(customerID string) {
	a.StripeCustomerID = customerID
	a.UpdatedAt = time.Now()
}

// UpdateSubscriptionStatus transitions the billing state
func (a *Account) UpdateSubscriptionStatus(status SubscriptionStatus) {
	a.SubscriptionStatus = status
	a.UpdatedAt = time.Now()
}

// IsEntitled reports whether paid features are available to this account
func (a *Account) IsEntitled() bool {
	return a.SubscriptionStatus.IsEntitled()
}
