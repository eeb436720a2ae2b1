package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatisticsSummary is the dashboard view over a date range.
type StatisticsSummary struct {
	From                   time.Time       `json:"from"`
	To                     time.Time       `json:"to"`
	TotalRevenue           decimal.Decimal `json:"total_revenue"`
	ActiveUsersCount       int             `json:"active_users_count"`
	ActiveSessionsCount    int             `json:"active_sessions_count"`
	ComputersInUseCount    int             `json:"computers_in_use_count"`
	AvailableComputerCount int             `json:"available_computers_count"`
	AverageSessionMinutes  decimal.Decimal `json:"average_session_minutes"`
	PeakUsageHours         []HourlyUsage   `json:"peak_usage_hours"`
	TopUsers               []TopUser       `json:"top_users"`
}

// DailyRevenue is the usage revenue of one UTC day.
type DailyRevenue struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// HourlyUsage counts sessions overlapping an hour of the day (0-23).
type HourlyUsage struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// TopUser ranks a user by spend.
type TopUser struct {
	UserID       uuid.UUID       `json:"user_id"`
	UserName     string          `json:"user_name"`
	TotalSeconds int64           `json:"total_seconds"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
}

// RevenueSummary breaks revenue down per user and per computer.
type RevenueSummary struct {
	TotalRevenue              decimal.Decimal `json:"total_revenue"`
	AverageRevenuePerUser     decimal.Decimal `json:"average_revenue_per_user"`
	AverageRevenuePerComputer decimal.Decimal `json:"average_revenue_per_computer"`
	DailyRevenue              []DailyRevenue  `json:"daily_revenue"`
}
