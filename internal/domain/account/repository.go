package account

import "context"

// Repository defines the persistence interface for accounts
type Repository interface {
	// FindByID retrieves an account by its internal id
	FindByID(ctx context.Context, id int64) (*Account, error)

	// FindByFUBAccountID retrieves an account by its FUB account id
	FindByFUBAccountID(ctx context.Context, fubAccountID string) (*Account, error)

	// FindByStripeCustomerID retrieves the account bound to a Stripe customer
	FindByStripeCustomerID(ctx context.Context, customerID string) (*Account, error)

	// Create persists a new account and fills in its generated id
	Create(ctx context.Context, account *Account) error

	// Save persists changes to an existing account
	Save(ctx context.Context, account *Account) error
}
