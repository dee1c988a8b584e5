package crm

import (
	"context"
	"strings"
	"testing"

	"github.com/fub-assistant/backend/internal/domain/account"
	"github.com/fub-assistant/backend/internal/domain/shared"
	"github.com/fub-assistant/backend/internal/infrastructure/fub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type stubNoteWriter struct {
	note    *fub.Note
	tokens  fub.Tokens
	err     error
	subject string
	body    string
}

func (s *stubNoteWriter) CreateNote(ctx context.Context, tokens fub.Tokens, personID, subject, body string) (*fub.Note, fub.Tokens, error) {
	s.subject = subject
	s.body = body
	out := tokens
	if s.tokens.AccessToken != "" {
		out = s.tokens
	}
	return s.note, out, s.err
}

func entitledAccount() *account.Account {
	return &account.Account{
		ID:                 7,
		FUBAccountID:       "acct_1",
		SubscriptionStatus: account.SubscriptionActive,
		FUBAccessToken:     "access-1",
		FUBRefreshToken:    "refresh-1",
	}
}

func TestNoteService_CreateNote(t *testing.T) {
	accounts := new(MockAccountRepository)
	writer := &stubNoteWriter{note: &fub.Note{ID: 42}}
	service := NewNoteService(NoteServiceConfig{Accounts: accounts, Writer: writer})

	accounts.On("FindByID", mock.Anything, int64(7)).Return(entitledAccount(), nil)

	result, err := service.CreateNote(context.Background(), CreateNoteInput{
		AccountID: 7,
		PersonID:  "123",
		Body:      "- Follow up tomorrow morning",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), result.NoteID)
	assert.Equal(t, "123", result.PersonID)
	assert.Equal(t, "AI Assistant Suggestion", writer.subject)
	accounts.AssertExpectations(t)
}

func TestNoteService_CreateNote_RequiresSubscription(t *testing.T) {
	accounts := new(MockAccountRepository)
	writer := &stubNoteWriter{note: &fub.Note{ID: 1}}
	service := NewNoteService(NoteServiceConfig{Accounts: accounts, Writer: writer})

	acc := entitledAccount()
	acc.SubscriptionStatus = account.SubscriptionCanceled
	accounts.On("FindByID", mock.Anything, int64(7)).Return(acc, nil)

	_, err := service.CreateNote(context.Background(), CreateNoteInput{
		AccountID: 7,
		PersonID:  "123",
		Body:      "text",
	})

	assert.ErrorIs(t, err, shared.ErrSubscriptionRequired)
}

func TestNoteService_CreateNote_InvalidInput(t *testing.T) {
	service := NewNoteService(NoteServiceConfig{
		Accounts: new(MockAccountRepository),
		Writer:   &stubNoteWriter{},
	})

	_, err := service.CreateNote(context.Background(), CreateNoteInput{AccountID: 7, PersonID: " ", Body: "x"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = service.CreateNote(context.Background(), CreateNoteInput{AccountID: 7, PersonID: "1", Body: "  "})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestNoteService_CreateNote_TruncatesLongBody(t *testing.T) {
	accounts := new(MockAccountRepository)
	writer := &stubNoteWriter{note: &fub.Note{ID: 5}}
	service := NewNoteService(NoteServiceConfig{Accounts: accounts, Writer: writer})

	accounts.On("FindByID", mock.Anything, int64(7)).Return(entitledAccount(), nil)

	_, err := service.CreateNote(context.Background(), CreateNoteInput{
		AccountID: 7,
		PersonID:  "123",
		Body:      strings.Repeat("a", 2100),
	})

	require.NoError(t, err)
	// The cap matches the request binding limit
	assert.Len(t, writer.body, 2000)
}

func TestNoteService_CreateNote_DeletedAccountIsUnauthorized(t *testing.T) {
	accounts := new(MockAccountRepository)
	service := NewNoteService(NoteServiceConfig{Accounts: accounts, Writer: &stubNoteWriter{}})

	accounts.On("FindByID", mock.Anything, int64(7)).Return(nil, shared.ErrNotFound)

	_, err := service.CreateNote(context.Background(), CreateNoteInput{
		AccountID: 7,
		PersonID:  "123",
		Body:      "text",
	})

	assert.Equal(t, shared.ErrUnauthorized, err)
}

func TestNoteService_CreateNote_PersistsRotatedTokens(t *testing.T) {
	accounts := new(MockAccountRepository)
	writer := &stubNoteWriter{
		note:   &fub.Note{ID: 9},
		tokens: fub.Tokens{AccessToken: "access-2", RefreshToken: "refresh-2"},
	}
	service := NewNoteService(NoteServiceConfig{Accounts: accounts, Writer: writer})

	acc := entitledAccount()
	accounts.On("FindByID", mock.Anything, int64(7)).Return(acc, nil)
	accounts.On("Save", mock.Anything, acc).Return(nil)

	_, err := service.CreateNote(context.Background(), CreateNoteInput{
		AccountID: 7,
		PersonID:  "123",
		Body:      "text",
	})

	require.NoError(t, err)
	assert.Equal(t, "access-2", acc.FUBAccessToken)
	assert.Equal(t, "refresh-2", acc.FUBRefreshToken)
	accounts.AssertExpectations(t)
}

func TestNoteService_CreateNote_MapsUpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		writeErr error
		wantCode string
	}{
		{name: "person not found", writeErr: fub.ErrNotFound, wantCode: "NOT_FOUND"},
		{name: "authentication failed", writeErr: fub.ErrAuthentication, wantCode: "CRM_DISCONNECTED"},
		{name: "server error", writeErr: fub.ErrUnavailable, wantCode: "UPSTREAM_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(MockAccountRepository)
			writer := &stubNoteWriter{err: tt.writeErr}
			service := NewNoteService(NoteServiceConfig{Accounts: accounts, Writer: writer})

			accounts.On("FindByID", mock.Anything, int64(7)).Return(entitledAccount(), nil)

			_, err := service.CreateNote(context.Background(), CreateNoteInput{
				AccountID: 7,
				PersonID:  "123",
				Body:      "text",
			})

			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}
