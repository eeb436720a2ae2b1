package repository

import (
	"context"
	"database/sql"
	"fmt"
	"internet-cafe-api/internal/database"
	"internet-cafe-api/internal/model"
	"time"

	"github.com/google/uuid"
)

// TransactionRepository appends and reads ledger entries. Entries are never updated or deleted.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, txn *model.Transaction, actor uuid.UUID) error
	ListTransactionsByAccount(ctx context.Context, accountID uuid.UUID, params PaginationParams) (*Page[model.Transaction], error)
	ListRecentTransactions(ctx context.Context, accountID uuid.UUID, limit int) ([]model.Transaction, error)
	ListTransactionsBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Transaction, error)
}

type transactionRepository struct {
	DB database.DBTX
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db database.DBTX) TransactionRepository {
	return &transactionRepository{DB: db}
}

const transactionColumns = `id, account_id, user_id, session_id, amount, type, payment_method, reference_number,
		description, created_at, created_by`

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	txns := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.UserID, &t.SessionID, &t.Amount, &t.Type, &t.PaymentMethod,
			&t.ReferenceNumber, &t.Description, &t.CreatedAt, &t.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return txns, nil
}

// CreateTransaction appends a ledger entry.
func (r *transactionRepository) CreateTransaction(ctx context.Context, txn *model.Transaction, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	txn.CreatedAt = time.Now().UTC()
	txn.CreatedBy = actor

	query := `
		INSERT INTO transactions (id, account_id, user_id, session_id, amount, type, payment_method,
			reference_number, description, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(ctx, query,
		txn.ID, txn.AccountID, txn.UserID, txn.SessionID, txn.Amount, txn.Type, txn.PaymentMethod,
		txn.ReferenceNumber, txn.Description, txn.CreatedAt, txn.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// ListTransactionsByAccount retrieves an account's entries, newest first, with pagination support.
func (r *transactionRepository) ListTransactionsByAccount(ctx context.Context, accountID uuid.UUID, params PaginationParams) (*Page[model.Transaction], error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE account_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`

	rows, err := r.DB.QueryContext(ctx, query, accountID, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}

	var totalCount int
	err = r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = $1`, accountID).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get total count of transactions: %w", err)
	}

	return &Page[model.Transaction]{Items: txns, TotalCount: totalCount}, nil
}

// ListRecentTransactions retrieves the newest entries of an account.
func (r *transactionRepository) ListRecentTransactions(ctx context.Context, accountID uuid.UUID, limit int) ([]model.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListTransactionsBySession retrieves the entries a session produced.
func (r *transactionRepository) ListTransactionsBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE session_id = $1 ORDER BY created_at`

	rows, err := r.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}
