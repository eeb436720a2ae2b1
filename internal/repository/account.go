package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"internet-cafe-api/internal/database"
	"internet-cafe-api/internal/model"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository is an interface for interacting with prepaid accounts.
// Balance changes go through Credit and Debit only, which update the row atomically.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *model.Account, actor uuid.UUID) error
	GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*model.Account, error)
	LockAccount(ctx context.Context, id uuid.UUID) (*model.Account, error)
	Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (decimal.Decimal, error)
	Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (decimal.Decimal, error)
}

type accountRepository struct {
	DB database.DBTX
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db database.DBTX) AccountRepository {
	return &accountRepository{DB: db}
}

const accountColumns = `id, user_id, balance, last_deposit_date, last_usage_date, lifecycle,
		created_at, created_by, updated_at, updated_by`

func scanAccount(row rowScanner) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Balance, &a.LastDepositDate, &a.LastUsageDate, &a.Lifecycle,
		&a.CreatedAt, &a.CreatedBy, &a.UpdatedAt, &a.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAccount inserts a new account.
func (r *accountRepository) CreateAccount(ctx context.Context, account *model.Account, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	account.Lifecycle = model.LifecycleActive
	account.Touch(actor, time.Now().UTC())

	query := `
		INSERT INTO accounts (id, user_id, balance, lifecycle, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.DB.ExecContext(ctx, query,
		account.ID, account.UserID, account.Balance, account.Lifecycle,
		account.CreatedAt, account.CreatedBy, account.UpdatedAt, account.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "accounts_user_id_key") {
			return fmt.Errorf("%w: %s", ErrAccountExists, account.UserID)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetAccountByID retrieves an account by its ID.
func (r *accountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND lifecycle = 'active'`, id)
}

// GetAccountByUserID retrieves the account owned by a user.
func (r *accountRepository) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*model.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 AND lifecycle = 'active'`, userID)
}

// LockAccount reads an account and holds a row lock until the surrounding transaction ends.
func (r *accountRepository) LockAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND lifecycle = 'active' FOR UPDATE`, id)
}

func (r *accountRepository) getOne(ctx context.Context, query string, arg any) (*model.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	account, err := scanAccount(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// Credit adds amount to the balance and returns the new balance.
func (r *accountRepository) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE accounts
		SET balance = balance + $1, last_deposit_date = $2, updated_at = $2, updated_by = $3
		WHERE id = $4 AND lifecycle = 'active'
		RETURNING balance`

	var balance decimal.Decimal
	err := r.DB.QueryRowContext(ctx, query, amount, time.Now().UTC(), actor, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to credit account: %w", err)
	}
	return balance, nil
}

// Debit subtracts amount only if the balance covers it, and returns the new balance.
// A rejected debit returns *InsufficientBalanceError with the balance seen at that moment.
func (r *accountRepository) Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE accounts
		SET balance = balance - $1, last_usage_date = $2, updated_at = $2, updated_by = $3
		WHERE id = $4 AND lifecycle = 'active' AND balance >= $1
		RETURNING balance`

	var balance decimal.Decimal
	err := r.DB.QueryRowContext(ctx, query, amount, time.Now().UTC(), actor, id).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("failed to debit account: %w", err)
	}

	var current decimal.Decimal
	err = r.DB.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = $1 AND lifecycle = 'active'`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}
	return decimal.Zero, &InsufficientBalanceError{Current: current, Required: amount}
}
