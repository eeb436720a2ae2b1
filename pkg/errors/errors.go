package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode is the machine-readable kind of an AppError. Clients branch on it, never on the message.
type ErrorCode string

const (
	// Business rule violations
	ErrorCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrorCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrorCodeConflict      ErrorCode = "CONFLICT"
	ErrorCodeInsufficient  ErrorCode = "INSUFFICIENT_FUNDS"
	ErrorCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden     ErrorCode = "FORBIDDEN"

	// Infrastructure failures
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabase ErrorCode = "DATABASE_ERROR"
	ErrorCodeTimeout  ErrorCode = "TIMEOUT_ERROR"

	// Malformed requests
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	ErrorCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
)

var statusByCode = map[ErrorCode]int{
	ErrorCodeValidation:       http.StatusBadRequest,
	ErrorCodeInvalidJSON:      http.StatusBadRequest,
	ErrorCodeMissingParameter: http.StatusBadRequest,
	ErrorCodeInvalidParameter: http.StatusBadRequest,
	ErrorCodeNotFound:         http.StatusNotFound,
	ErrorCodeAlreadyExists:    http.StatusConflict,
	ErrorCodeConflict:         http.StatusConflict,
	ErrorCodeInsufficient:     http.StatusPaymentRequired,
	ErrorCodeUnauthorized:     http.StatusUnauthorized,
	ErrorCodeForbidden:        http.StatusForbidden,
	ErrorCodeTimeout:          http.StatusRequestTimeout,
}

// AppError is the error every service returns to the HTTP layer.
type AppError struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Cause     error          `json:"-"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// GetHTTPStatus returns the response status for the error's code. Unknown codes are 500.
func (e *AppError) GetHTTPStatus() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithDetail attaches a key to Details and returns e for chaining.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// NewAppError creates an AppError without a cause.
func NewAppError(code ErrorCode, message string) *AppError {
	return NewAppErrorWithCause(code, message, nil)
}

// NewAppErrorWithCause creates an AppError wrapping cause.
func NewAppErrorWithCause(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Details:   make(map[string]any),
		Cause:     cause,
		Timestamp: time.Now().UTC(),
	}
}

func ValidationError(message string) *AppError {
	return NewAppError(ErrorCodeValidation, message)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(ErrorCodeNotFound, resource+" not found")
}

func AlreadyExistsError(resource string) *AppError {
	return NewAppError(ErrorCodeAlreadyExists, resource+" already exists")
}

// ConflictError reports a rejected state transition.
func ConflictError(message string) *AppError {
	return NewAppError(ErrorCodeConflict, message)
}

// InsufficientFundsError reports a balance below the amount an operation needs.
// Both amounts are carried as strings so they keep their two fraction digits in JSON.
func InsufficientFundsError(currentBalance, requiredAmount string) *AppError {
	return NewAppError(ErrorCodeInsufficient, "insufficient balance").
		WithDetail("current_balance", currentBalance).
		WithDetail("required_amount", requiredAmount)
}

// InvalidParameterError names the request parameter that was rejected.
func InvalidParameterError(name, message string) *AppError {
	return NewAppError(ErrorCodeInvalidParameter, message).WithDetail("parameter", name)
}

func DatabaseError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeDatabase, message, cause)
}

func InternalError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeInternal, message, cause)
}

func TimeoutError(operation string) *AppError {
	return NewAppError(ErrorCodeTimeout, "timeout during "+operation)
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
