package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"internet-cafe-api/internal/database"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Custom errors for better error handling
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateUser        = errors.New("user with this username or email already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountExists        = errors.New("account already exists for user")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrComputerNotFound     = errors.New("computer not found")
	ErrDuplicateComputer    = errors.New("computer with this name or IP address already exists")
	ErrComputerNotAvailable = errors.New("computer is not available")
	ErrStatusMismatch       = errors.New("computer status changed concurrently")
	ErrComputerInUse        = errors.New("computer has an active session")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionNotActive     = errors.New("session is not active")
	ErrActiveSessionExists  = errors.New("user already has an active session")
)

// InsufficientBalanceError carries the amounts behind a rejected debit.
type InsufficientBalanceError struct {
	Current  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: current %s, required %s", e.Current.StringFixed(2), e.Required.StringFixed(2))
}

// Is lets errors.Is match the sentinel.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// PaginationParams holds pagination parameters for repository queries
type PaginationParams struct {
	Offset int
	Limit  int
}

// Page holds one page of results plus the total row count
type Page[T any] struct {
	Items      []T
	TotalCount int
}

// Repositories groups every repository bound to the same connection or transaction.
type Repositories struct {
	Users        UserRepository
	Accounts     AccountRepository
	Computers    ComputerRepository
	Sessions     SessionRepository
	Transactions TransactionRepository
}

// NewRepositories binds all repositories to db, which may be a pool or a transaction.
func NewRepositories(db database.DBTX) Repositories {
	return Repositories{
		Users:        NewUserRepository(db),
		Accounts:     NewAccountRepository(db),
		Computers:    NewComputerRepository(db),
		Sessions:     NewSessionRepository(db),
		Transactions: NewTransactionRepository(db),
	}
}

// Store hands out repositories on the pool or inside a single transaction.
type Store struct {
	db    *sql.DB
	repos Repositories
}

// NewStore creates a Store over the pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repos: NewRepositories(db)}
}

// Repos returns repositories that run each statement on its own.
func (s *Store) Repos() Repositories {
	return s.repos
}

// WithinTx runs fn with repositories bound to one transaction.
// The transaction commits only if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	return database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(NewRepositories(tx))
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports a Postgres 23505 error, optionally on a specific constraint.
func isUniqueViolation(err error, constraints ...string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, c := range constraints {
		if pqErr.Constraint == c {
			return true
		}
	}
	return false
}

func checkRowsAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
