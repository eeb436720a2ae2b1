package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UsageStatus is the domain state of a computer, orthogonal to its Lifecycle.
type UsageStatus string

const (
	StatusAvailable   UsageStatus = "available"
	StatusInUse       UsageStatus = "in_use"
	StatusMaintenance UsageStatus = "maintenance"
)

// Valid reports whether s is a known usage status.
func (s UsageStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
// Allowed: Available <-> InUse and Available <-> Maintenance.
func (s UsageStatus) CanTransitionTo(next UsageStatus) bool {
	switch s {
	case StatusAvailable:
		return next == StatusInUse || next == StatusMaintenance
	case StatusInUse, StatusMaintenance:
		return next == StatusAvailable
	}
	return false
}

// Computer represents a terminal that can be rented by the hour.
type Computer struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	IPAddress           string          `json:"ip_address"`
	Specifications      string          `json:"specifications,omitempty"`
	Location            string          `json:"location,omitempty"`
	HourlyRate          decimal.Decimal `json:"hourly_rate"`
	UsageStatus         UsageStatus     `json:"usage_status"`
	LastMaintenanceDate *time.Time      `json:"last_maintenance_date,omitempty"`
	LastUsedDate        *time.Time      `json:"last_used_date,omitempty"`
	Lifecycle           Lifecycle       `json:"-"`
	Audit
}
