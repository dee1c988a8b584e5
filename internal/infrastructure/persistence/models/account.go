package models

import (
	"time"

	"github.com/fub-assistant/backend/internal/domain/account"
)

// AccountModel maps the accounts table
type AccountModel struct {
	AccountID          int64     `gorm:"column:account_id;primaryKey;autoIncrement"`
	FUBAccountID       string    `gorm:"column:fub_account_id;uniqueIndex;not null"`
	SubscriptionStatus string    `gorm:"column:subscription_status;not null;default:trialing"`
	FUBAccessToken     string    `gorm:"column:fub_access_token"`
	FUBRefreshToken    string    `gorm:"column:fub_refresh_token"`
	StripeCustomerID   string    `gorm:"column:stripe_customer_id;index"`
	CreatedAt          time.Time `gorm:"column:created_at;not null"`
	UpdatedAt          time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the model to a domain account
func (m *AccountModel) ToDomain() *account.Account {
	return &account.Account{
		ID:                 m.AccountID,
		FUBAccountID:       m.FUBAccountID,
		SubscriptionStatus: account.SubscriptionStatus(m.SubscriptionStatus),
		FUBAccessToken:     m.FUBAccessToken,
		FUBRefreshToken:    m.FUBRefreshToken,
		StripeCustomerID:   m.StripeCustomerID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain account
func (m *AccountModel) FromDomain(a *account.Account) {
	m.AccountID = a.ID
	m.FUBAccountID = a.FUBAccountID
	m.SubscriptionStatus = string(a.SubscriptionStatus)
	m.FUBAccessToken = a.FUBAccessToken
	m.FUBRefreshToken = a.FUBRefreshToken
	m.StripeCustomerID = a.StripeCustomerID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
}
