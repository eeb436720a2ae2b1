package service

import (
	"context"
	stderrors "errors"
	"internet-cafe-api/internal/audit"
	"internet-cafe-api/internal/repository"
	"internet-cafe-api/pkg/errors"

	"github.com/shopspring/decimal"
)

// Store provides repositories, either directly or bound to one transaction.
type Store interface {
	Repos() repository.Repositories
	WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error
}

// AuditRecorder accepts audit events. Implementations must not block.
type AuditRecorder interface {
	Record(event audit.Event)
}

type nopRecorder struct{}

func (nopRecorder) Record(audit.Event) {}

// Conflict reasons carried in AppError details under "reason".
const (
	ReasonComputerNotAvailable = "computer_not_available"
	ReasonActiveSessionExists  = "active_session_exists"
	ReasonSessionNotActive     = "session_not_active"
	ReasonUserSuspended        = "user_suspended"
	ReasonInvalidTransition    = "invalid_status_transition"
	ReasonComputerHasSession   = "computer_has_active_session"
)

func conflict(reason, message string) *errors.AppError {
	return errors.ConflictError(message).WithDetail("reason", reason)
}

// translate maps repository errors onto the application error taxonomy.
func translate(err error, operation string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	var insufficient *repository.InsufficientBalanceError
	switch {
	case stderrors.As(err, &insufficient):
		return errors.InsufficientFundsError(insufficient.Current.StringFixed(2), insufficient.Required.StringFixed(2))
	case stderrors.Is(err, repository.ErrUserNotFound):
		return errors.NotFoundError("user")
	case stderrors.Is(err, repository.ErrAccountNotFound):
		return errors.NotFoundError("account")
	case stderrors.Is(err, repository.ErrComputerNotFound):
		return errors.NotFoundError("computer")
	case stderrors.Is(err, repository.ErrSessionNotFound):
		return errors.NotFoundError("session")
	case stderrors.Is(err, repository.ErrDuplicateUser):
		return errors.AlreadyExistsError("user with this username or email")
	case stderrors.Is(err, repository.ErrDuplicateComputer):
		return errors.AlreadyExistsError("computer with this name or IP address")
	case stderrors.Is(err, repository.ErrAccountExists):
		return errors.AlreadyExistsError("account")
	case stderrors.Is(err, repository.ErrComputerNotAvailable), stderrors.Is(err, repository.ErrStatusMismatch):
		return conflict(ReasonComputerNotAvailable, "computer is not available")
	case stderrors.Is(err, repository.ErrComputerInUse):
		return conflict(ReasonComputerHasSession, "computer has an active session")
	case stderrors.Is(err, repository.ErrActiveSessionExists):
		return conflict(ReasonActiveSessionExists, "user already has an active session")
	case stderrors.Is(err, repository.ErrSessionNotActive):
		return conflict(ReasonSessionNotActive, "session is not active")
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.TimeoutError(operation)
	default:
		return errors.DatabaseError("failed to "+operation, err)
	}
}

// validateAmount accepts positive amounts with at most two fraction digits.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.ValidationError("amount must be greater than zero").WithDetail("amount", amount.String())
	}
	if !amount.Equal(amount.Round(2)) {
		return errors.ValidationError("amount must have at most two decimal places").WithDetail("amount", amount.String())
	}
	return nil
}

// unknownName is shown when a referenced user or computer cannot be resolved.
const unknownName = "Unknown"

func isErr(err, target error) bool {
	return stderrors.Is(err, target)
}
