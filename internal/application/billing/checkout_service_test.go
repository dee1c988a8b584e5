package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/fub-assistant/backend/internal/domain/shared"
	"github.com/fub-assistant/backend/internal/infrastructure/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubCheckoutGateway struct {
	checkoutInput billing.CreateCheckoutSessionInput
	checkoutOut   *billing.CreateCheckoutSessionOutput
	checkoutErr   error
	portalURL     string
	portalErr     error
}

func (s *stubCheckoutGateway) CreateCheckoutSession(ctx context.Context, input billing.CreateCheckoutSessionInput) (*billing.CreateCheckoutSessionOutput, error) {
	s.checkoutInput = input
	return s.checkoutOut, s.checkoutErr
}

func (s *stubCheckoutGateway) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	return s.portalURL, s.portalErr
}

func TestCheckoutService_StartCheckout(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := &stubCheckoutGateway{
		checkoutOut: &billing.CreateCheckoutSessionOutput{
			SessionID: "cs_test123",
			URL:       "https://checkout.stripe.com/c/pay/cs_test123",
		},
	}
	service := NewCheckoutService(CheckoutServiceConfig{Accounts: accounts, Gateway: gateway})

	acc := createWebhookTestAccount(t)
	accounts.On("FindByID", mock.Anything, int64(42)).Return(acc, nil)

	result, err := service.StartCheckout(context.Background(), StartCheckoutInput{
		AccountID:     42,
		CustomerEmail: "agent@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_test123", result.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test123", result.CheckoutURL)
	assert.Equal(t, "fub_acct_1", gateway.checkoutInput.FUBAccountID)
	assert.Equal(t, "cus_test123", gateway.checkoutInput.CustomerID)
	assert.Equal(t, "agent@example.com", gateway.checkoutInput.CustomerEmail)
	accounts.AssertExpectations(t)
}

func TestCheckoutService_StartCheckout_GatewayError(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := &stubCheckoutGateway{checkoutErr: errors.New("stripe down")}
	service := NewCheckoutService(CheckoutServiceConfig{Accounts: accounts, Gateway: gateway})

	accounts.On("FindByID", mock.Anything, int64(42)).Return(createWebhookTestAccount(t), nil)

	_, err := service.StartCheckout(context.Background(), StartCheckoutInput{AccountID: 42})

	assert.ErrorIs(t, err, shared.ErrUpstreamUnavailable)
}

func TestCheckoutService_OpenPortal(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := &stubCheckoutGateway{portalURL: "https://billing.stripe.com/p/session/xyz"}
	service := NewCheckoutService(CheckoutServiceConfig{Accounts: accounts, Gateway: gateway})

	accounts.On("FindByID", mock.Anything, int64(42)).Return(createWebhookTestAccount(t), nil)

	result, err := service.OpenPortal(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.com/p/session/xyz", result.PortalURL)
}

func TestCheckoutService_OpenPortal_NoCustomer(t *testing.T) {
	accounts := new(MockAccountRepository)
	service := NewCheckoutService(CheckoutServiceConfig{Accounts: accounts, Gateway: &stubCheckoutGateway{}})

	acc := createWebhookTestAccount(t)
	acc.StripeCustomerID = ""
	accounts.On("FindByID", mock.Anything, int64(42)).Return(acc, nil)

	_, err := service.OpenPortal(context.Background(), 42)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NO_BILLING_PROFILE", domainErr.Code)
}

func TestCheckoutService_DeletedAccountIsUnauthorized(t *testing.T) {
	accounts := new(MockAccountRepository)
	service := NewCheckoutService(CheckoutServiceConfig{Accounts: accounts, Gateway: &stubCheckoutGateway{}})

	accounts.On("FindByID", mock.Anything, int64(42)).Return(nil, shared.ErrNotFound)

	_, err := service.StartCheckout(context.Background(), StartCheckoutInput{AccountID: 42})
	assert.Equal(t, shared.ErrUnauthorized, err)

	_, err = service.OpenPortal(context.Background(), 42)
	assert.Equal(t, shared.ErrUnauthorized, err)
}
