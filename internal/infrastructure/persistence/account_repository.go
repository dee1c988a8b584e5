package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/fub-assistant/backend/internal/domain/account"
	"github.com/fub-assistant/backend/internal/domain/shared"
	"github.com/fub-assistant/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAccountRepository implements account.Repository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its internal id
func (r *GormAccountRepository) FindByID(ctx context.Context, id int64) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "account_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByFUBAccountID finds an account by its FUB account id
func (r *GormAccountRepository) FindByFUBAccountID(ctx context.Context, fubAccountID string) (*account.Account, error) {
	fubAccountID = strings.TrimSpace(fubAccountID)
	if fubAccountID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "FUB account id cannot be empty")
	}
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("fub_account_id = ?", fubAccountID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStripeCustomerID finds the account bound to a Stripe customer
func (r *GormAccountRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*account.Account, error) {
	if customerID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Stripe customer id cannot be empty")
	}
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("stripe_customer_id = ?", customerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create persists a new account and fills in its generated id
func (r *GormAccountRepository) Create(ctx context.Context, a *account.Account) error {
	var model models.AccountModel
	model.FromDomain(a)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	a.ID = model.AccountID
	return nil
}

// Save persists changes to an existing account
func (r *GormAccountRepository) Save(ctx context.Context, a *account.Account) error {
	var model models.AccountModel
	model.FromDomain(a)
	result := r.db.WithContext(ctx).Save(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
