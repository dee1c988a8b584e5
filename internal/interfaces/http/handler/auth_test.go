package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authapp "github.com/fub-assistant/backend/internal/application/auth"
	"github.com/fub-assistant/backend/internal/domain/account"
	"github.com/fub-assistant/backend/internal/domain/shared"
	"github.com/fub-assistant/backend/internal/infrastructure/auth"
	"github.com/fub-assistant/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockAccountRepository is a mock implementation of account.Repository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByFUBAccountID(ctx context.Context, fubAccountID string) (*account.Account, error) {
	args := m.Called(ctx, fubAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*account.Account, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) Save(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

const testEmbedSecret = "embed-secret-for-tests"

func newAuthTestRouter(accounts *MockAccountRepository) (*gin.Engine, *auth.EmbedVerifier) {
	verifier := auth.NewEmbedVerifier(testEmbedSecret)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:          "jwt-secret-for-tests-jwt-secret-xx",
		TokenExpiration: 24 * time.Hour,
		Issuer:          "fub-assistant-test",
	})
	service := authapp.NewService(authapp.ServiceConfig{
		Accounts: accounts,
		Verifier: verifier,
		Tokens:   jwtService,
	})
	h := NewAuthHandler(service)

	router := gin.New()
	router.POST("/api/v1/auth/iframe-login", h.IframeLogin)
	return router, verifier
}

func signedEmbedContext(t *testing.T, verifier *auth.EmbedVerifier, fubAccountID, personID string) (string, string) {
	payload := map[string]any{
		"account": map[string]string{"id": fubAccountID},
		"person":  map[string]string{"id": personID},
		"user":    map[string]string{"id": "u1", "name": "Test Agent", "email": "agent@example.com"},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString(raw)
	return encoded, verifier.Sign(encoded)
}

func TestAuthHandler_IframeLogin(t *testing.T) {
	accounts := new(MockAccountRepository)
	router, verifier := newAuthTestRouter(accounts)

	acc, err := account.NewAccount("fub_acct_1")
	require.NoError(t, err)
	acc.ID = 7
	accounts.On("FindByFUBAccountID", mock.Anything, "fub_acct_1").Return(acc, nil)

	encoded, signature := signedEmbedContext(t, verifier, "fub_acct_1", "123")
	body, _ := json.Marshal(IframeLoginRequest{Context: encoded, Signature: signature})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/iframe-login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"account_id":7`)
	assert.Contains(t, w.Body.String(), `"person_id":"123"`)
	assert.Contains(t, w.Body.String(), `"entitled":true`)
	accounts.AssertExpectations(t)
}

func TestAuthHandler_IframeLogin_ProvisionsNewAccount(t *testing.T) {
	accounts := new(MockAccountRepository)
	router, verifier := newAuthTestRouter(accounts)

	accounts.On("FindByFUBAccountID", mock.Anything, "fub_new").Return(nil, shared.ErrNotFound)
	accounts.On("Create", mock.Anything, mock.AnythingOfType("*account.Account")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*account.Account).ID = 99
		}).
		Return(nil)

	encoded, signature := signedEmbedContext(t, verifier, "fub_new", "456")
	body, _ := json.Marshal(IframeLoginRequest{Context: encoded, Signature: signature})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/iframe-login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"account_id":99`)
	assert.Contains(t, w.Body.String(), `"subscription_status":"trialing"`)
	accounts.AssertExpectations(t)
}

func TestAuthHandler_IframeLogin_InvalidSignature(t *testing.T) {
	accounts := new(MockAccountRepository)
	router, verifier := newAuthTestRouter(accounts)

	encoded, _ := signedEmbedContext(t, verifier, "fub_acct_1", "123")
	body, _ := json.Marshal(IframeLoginRequest{Context: encoded, Signature: "deadbeef"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/iframe-login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	accounts.AssertNotCalled(t, "FindByFUBAccountID")
}

func TestAuthHandler_IframeLogin_MissingFields(t *testing.T) {
	accounts := new(MockAccountRepository)
	router, _ := newAuthTestRouter(accounts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/iframe-login", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
