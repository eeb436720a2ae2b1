package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the prepaid balance owned by exactly one user.
type Account struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Balance         decimal.Decimal `json:"balance"`
	LastDepositDate *time.Time      `json:"last_deposit_date,omitempty"`
	LastUsageDate   *time.Time      `json:"last_usage_date,omitempty"`
	Lifecycle       Lifecycle       `json:"-"`
	Audit
}

// AccountDetails is an account with its owner's name and latest ledger entries.
type AccountDetails struct {
	Account
	UserName           string        `json:"user_name"`
	RecentTransactions []Transaction `json:"recent_transactions"`
}
