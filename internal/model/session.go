package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle of a usage session. Completed and Terminated are terminal.
type SessionStatus string

const (
	SessionActive     SessionStatus = "active"
	SessionCompleted  SessionStatus = "completed"
	SessionTerminated SessionStatus = "terminated"
)

// Session is one timed occupancy of a computer by a user.
type Session struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	ComputerID      uuid.UUID       `json:"computer_id"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         *time.Time      `json:"end_time,omitempty"`
	DurationSeconds int64           `json:"duration_seconds"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	Status          SessionStatus   `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	Lifecycle       Lifecycle       `json:"-"`
	Audit
}

// Duration returns the elapsed time recorded when the session closed.
func (s Session) Duration() time.Duration {
	return time.Duration(s.DurationSeconds) * time.Second
}

// IsActive reports whether the session can still be closed.
func (s Session) IsActive() bool {
	return s.Status == SessionActive
}

// SessionView is a session with resolved display names.
type SessionView struct {
	Session
	UserName     string `json:"user_name"`
	ComputerName string `json:"computer_name"`
}

// SessionDetails adds the ledger entries a session produced.
type SessionDetails struct {
	SessionView
	Transactions []Transaction `json:"transactions"`
}
