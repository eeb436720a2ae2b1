package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionDeposit       TransactionType = "deposit"
	TransactionWithdrawal    TransactionType = "withdrawal"
	TransactionComputerUsage TransactionType = "computer_usage"
	TransactionRefund        TransactionType = "refund"
	TransactionAdjustment    TransactionType = "adjustment"
)

// Transaction is an append-only ledger entry. Credits are positive, debits negative.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"account_id"`
	UserID          *uuid.UUID      `json:"user_id,omitempty"`
	SessionID       *uuid.UUID      `json:"session_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Type            TransactionType `json:"type"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       uuid.UUID       `json:"created_by"`
}
