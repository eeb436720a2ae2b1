package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"internet-cafe-api/internal/audit"
	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/repository"
	"internet-cafe-api/pkg/errors"
	"internet-cafe-api/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecentTransactionsLimit is how many ledger entries account details include.
const RecentTransactionsLimit = 10

// Default ledger descriptions
const (
	DefaultDepositDescription    = "Deposit to account"
	DefaultWithdrawalDescription = "Withdrawal from account"
)

// DepositRequest describes money paid into an account.
type DepositRequest struct {
	AccountID       uuid.UUID
	Amount          decimal.Decimal
	PaymentMethod   string
	ReferenceNumber string
	Description     string
}

// WithdrawRequest describes money paid out of an account.
type WithdrawRequest struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Reason    string
}

// AccountService is the ledger: it owns balances and the transaction history.
type AccountService struct {
	store  Store
	audit  AuditRecorder
	logger *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(store Store, recorder AuditRecorder, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &AccountService{store: store, audit: recorder, logger: logger}
}

// CreateAccount opens a zero-balance account for the user, or returns the one it already has.
func (s *AccountService) CreateAccount(ctx context.Context, userID, actor uuid.UUID) (*model.Account, error) {
	var (
		account *model.Account
		created bool
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Users.GetUserByID(ctx, userID); err != nil {
			return err
		}
		var err error
		account, created, err = createAccount(ctx, repos, userID, actor)
		return err
	})
	if err != nil {
		return nil, translate(err, "create account")
	}

	if created {
		s.audit.Record(audit.Event{
			Action:   audit.ActionAccountCreated,
			Entity:   audit.EntityAccount,
			EntityID: account.ID,
			ActorID:  actor,
			Detail:   fmt.Sprintf("Account created for user %s", userID),
		})
		s.logger.Info("account created", "account_id", account.ID, "user_id", userID)
	}
	return account, nil
}

// createAccount returns the user's existing account or inserts a new one.
func createAccount(ctx context.Context, repos repository.Repositories, userID, actor uuid.UUID) (*model.Account, bool, error) {
	existing, err := repos.Accounts.GetAccountByUserID(ctx, userID)
	if err == nil {
		return existing, false, nil
	}
	if !isErr(err, repository.ErrAccountNotFound) {
		return nil, false, err
	}

	account := &model.Account{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   decimal.Zero,
		Lifecycle: model.LifecycleActive,
	}
	if err := repos.Accounts.CreateAccount(ctx, account, actor); err != nil {
		return nil, false, err
	}
	return account, true, nil
}

// GetAccount retrieves an account by its ID
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.store.Repos().Accounts.GetAccountByID(ctx, id)
	if err != nil {
		return nil, translate(err, "retrieve account")
	}
	return account, nil
}

// GetAccountByUserID retrieves the account owned by a user
func (s *AccountService) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*model.Account, error) {
	account, err := s.store.Repos().Accounts.GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, translate(err, "retrieve account")
	}
	return account, nil
}

// GetBalance returns the current balance of an account
func (s *AccountService) GetBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// HasSufficientBalance reports whether the account can cover amount
func (s *AccountService) HasSufficientBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	balance, err := s.GetBalance(ctx, id)
	if err != nil {
		return false, err
	}
	return balance.GreaterThanOrEqual(amount), nil
}

// GetAccountDetails returns the account with its owner's name and latest transactions
func (s *AccountService) GetAccountDetails(ctx context.Context, id uuid.UUID) (*model.AccountDetails, error) {
	repos := s.store.Repos()

	account, err := repos.Accounts.GetAccountByID(ctx, id)
	if err != nil {
		return nil, translate(err, "retrieve account")
	}

	details := &model.AccountDetails{Account: *account, UserName: unknownName}
	if user, err := repos.Users.GetUserByID(ctx, account.UserID); err == nil {
		details.UserName = user.Username
	} else if !isErr(err, repository.ErrUserNotFound) {
		return nil, translate(err, "retrieve account owner")
	}

	recent, err := repos.Transactions.ListRecentTransactions(ctx, id, RecentTransactionsLimit)
	if err != nil {
		return nil, translate(err, "retrieve recent transactions")
	}
	details.RecentTransactions = recent

	return details, nil
}

// ListTransactions returns one page of an account's ledger, newest first
func (s *AccountService) ListTransactions(ctx context.Context, accountID uuid.UUID, params repository.PaginationParams) (*repository.Page[model.Transaction], error) {
	repos := s.store.Repos()
	if _, err := repos.Accounts.GetAccountByID(ctx, accountID); err != nil {
		return nil, translate(err, "retrieve account")
	}

	page, err := repos.Transactions.ListTransactionsByAccount(ctx, accountID, params)
	if err != nil {
		return nil, translate(err, "retrieve transactions")
	}

	s.logger.Debug("retrieved transactions", "account_id", accountID, "count", len(page.Items),
		"offset", params.Offset, "limit", params.Limit)
	return page, nil
}

// Deposit credits the account and appends a deposit entry in one transaction
func (s *AccountService) Deposit(ctx context.Context, req DepositRequest, actor uuid.UUID) (*model.Transaction, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := validation.ValidateMaxLength("description", req.Description, validation.MaxDescriptionLength); err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	if req.Description == "" {
		req.Description = DefaultDepositDescription
	}

	var txn *model.Transaction
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		account, err := repos.Accounts.GetAccountByID(ctx, req.AccountID)
		if err != nil {
			return err
		}
		if _, err := repos.Accounts.Credit(ctx, account.ID, req.Amount, actor); err != nil {
			return err
		}

		userID := account.UserID
		txn = &model.Transaction{
			AccountID:       account.ID,
			UserID:          &userID,
			Amount:          req.Amount,
			Type:            model.TransactionDeposit,
			PaymentMethod:   req.PaymentMethod,
			ReferenceNumber: req.ReferenceNumber,
			Description:     req.Description,
		}
		return repos.Transactions.CreateTransaction(ctx, txn, actor)
	})
	if err != nil {
		return nil, translate(err, "deposit")
	}

	s.audit.Record(audit.Event{
		Action:   audit.ActionAccountDeposit,
		Entity:   audit.EntityAccount,
		EntityID: req.AccountID,
		ActorID:  actor,
		Detail:   fmt.Sprintf("Deposited %s to account %s", req.Amount.StringFixed(2), req.AccountID),
	})
	s.logger.Info("deposit recorded", "account_id", req.AccountID, "amount", req.Amount.StringFixed(2))

	return txn, nil
}

// Withdraw debits the account and appends a withdrawal entry in one transaction.
// The debit is rejected when the balance would go below zero.
func (s *AccountService) Withdraw(ctx context.Context, req WithdrawRequest, actor uuid.UUID) (*model.Transaction, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := validation.ValidateMaxLength("reason", req.Reason, validation.MaxDescriptionLength); err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	if req.Reason == "" {
		req.Reason = DefaultWithdrawalDescription
	}

	var txn *model.Transaction
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		account, err := repos.Accounts.GetAccountByID(ctx, req.AccountID)
		if err != nil {
			return err
		}
		if _, err := repos.Accounts.Debit(ctx, account.ID, req.Amount, actor); err != nil {
			return err
		}

		userID := account.UserID
		txn = &model.Transaction{
			AccountID:   account.ID,
			UserID:      &userID,
			Amount:      req.Amount.Neg(),
			Type:        model.TransactionWithdrawal,
			Description: req.Reason,
		}
		return repos.Transactions.CreateTransaction(ctx, txn, actor)
	})
	if err != nil {
		return nil, translate(err, "withdraw")
	}

	s.audit.Record(audit.Event{
		Action:   audit.ActionAccountWithdrawal,
		Entity:   audit.EntityAccount,
		EntityID: req.AccountID,
		ActorID:  actor,
		Detail:   fmt.Sprintf("Withdrew %s from account %s: %s", req.Amount.StringFixed(2), req.AccountID, req.Reason),
	})
	s.logger.Info("withdrawal recorded", "account_id", req.AccountID, "amount", req.Amount.StringFixed(2))

	return txn, nil
}

// ChargeForSession debits a session's cost in its own transaction.
func (s *AccountService) ChargeForSession(ctx context.Context, accountID, sessionID uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (*model.Transaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	var txn *model.Transaction
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		account, err := repos.Accounts.GetAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if _, err := repos.Sessions.GetSessionByID(ctx, sessionID); err != nil {
			return err
		}
		txn, err = chargeForSession(ctx, repos, account, sessionID, amount, actor)
		return err
	})
	if err != nil {
		return nil, translate(err, "charge for session")
	}

	s.audit.Record(chargeEvent(txn, actor))
	return txn, nil
}

// chargeForSession debits amount and appends a computer_usage entry on the caller's transaction.
func chargeForSession(ctx context.Context, repos repository.Repositories, account *model.Account, sessionID uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (*model.Transaction, error) {
	if _, err := repos.Accounts.Debit(ctx, account.ID, amount, actor); err != nil {
		return nil, err
	}

	userID := account.UserID
	sid := sessionID
	txn := &model.Transaction{
		AccountID:   account.ID,
		UserID:      &userID,
		SessionID:   &sid,
		Amount:      amount.Neg(),
		Type:        model.TransactionComputerUsage,
		Description: fmt.Sprintf("Charge for session #%s", sessionID),
	}
	if err := repos.Transactions.CreateTransaction(ctx, txn, actor); err != nil {
		return nil, err
	}
	return txn, nil
}

func chargeEvent(txn *model.Transaction, actor uuid.UUID) audit.Event {
	return audit.Event{
		Action:    audit.ActionSessionCharge,
		Entity:    audit.EntityAccount,
		EntityID:  txn.AccountID,
		ActorID:   actor,
		Timestamp: time.Now().UTC(),
		Detail:    fmt.Sprintf("%s charged: %s", txn.Description, txn.Amount.Neg().StringFixed(2)),
	}
}
