package statistics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"internet-cafe-api/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// DayAmount is the usage revenue booked on one UTC day.
type DayAmount struct {
	Day    time.Time       `db:"day"`
	Amount decimal.Decimal `db:"amount"`
}

// SessionRecord is the slice of a session the aggregations need.
type SessionRecord struct {
	ID              uuid.UUID           `db:"id"`
	UserID          uuid.UUID           `db:"user_id"`
	UserName        string              `db:"user_name"`
	StartTime       time.Time           `db:"start_time"`
	EndTime         *time.Time          `db:"end_time"`
	DurationSeconds int64               `db:"duration_seconds"`
	TotalCost       decimal.Decimal     `db:"total_cost"`
	Status          model.SessionStatus `db:"status"`
}

// Counts are point-in-time and range counters for the dashboard.
type Counts struct {
	TotalUsers         int `db:"total_users"`
	TotalComputers     int `db:"total_computers"`
	ActiveUsers        int `db:"active_users"`
	ActiveSessions     int `db:"active_sessions"`
	ComputersInUse     int `db:"computers_in_use"`
	ComputersAvailable int `db:"computers_available"`
}

// Reader runs the read-only statistics queries.
type Reader interface {
	UsageRevenueByDay(ctx context.Context, from, to time.Time) ([]DayAmount, error)
	SessionsInRange(ctx context.Context, from, to time.Time) ([]SessionRecord, error)
	Counts(ctx context.Context, from, to time.Time) (*Counts, error)
}

type sqlReader struct {
	DB *sqlx.DB
}

// NewReader wraps the pool for statistics queries.
func NewReader(db *sql.DB) Reader {
	return &sqlReader{DB: sqlx.NewDb(db, "postgres")}
}

// UsageRevenueByDay sums computer usage charges per UTC day as positive amounts.
func (r *sqlReader) UsageRevenueByDay(ctx context.Context, from, to time.Time) ([]DayAmount, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, SUM(ABS(amount)) AS amount
		FROM transactions
		WHERE type = 'computer_usage' AND created_at >= $1 AND created_at <= $2
		GROUP BY day
		ORDER BY day`

	days := []DayAmount{}
	if err := r.DB.SelectContext(ctx, &days, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to query daily revenue: %w", err)
	}
	return days, nil
}

// SessionsInRange returns non-terminated sessions that started at or after from
// and are either still running or ended by to.
func (r *sqlReader) SessionsInRange(ctx context.Context, from, to time.Time) ([]SessionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT s.id, s.user_id, COALESCE(u.username, 'Unknown') AS user_name, s.start_time, s.end_time,
			s.duration_seconds, s.total_cost, s.status
		FROM sessions s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.start_time >= $1 AND (s.end_time IS NULL OR s.end_time <= $2)
			AND s.status <> 'terminated' AND s.lifecycle = 'active'
		ORDER BY s.start_time`

	sessions := []SessionRecord{}
	if err := r.DB.SelectContext(ctx, &sessions, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to query sessions in range: %w", err)
	}
	return sessions, nil
}

// Counts reads every dashboard counter in one round trip.
func (r *sqlReader) Counts(ctx context.Context, from, to time.Time) (*Counts, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE lifecycle = 'active') AS total_users,
			(SELECT COUNT(*) FROM computers WHERE lifecycle = 'active') AS total_computers,
			(SELECT COUNT(DISTINCT user_id) FROM sessions
				WHERE start_time >= $1 AND start_time <= $2 AND lifecycle = 'active') AS active_users,
			(SELECT COUNT(*) FROM sessions WHERE status = 'active' AND lifecycle = 'active') AS active_sessions,
			(SELECT COUNT(*) FROM computers WHERE usage_status = 'in_use' AND lifecycle = 'active') AS computers_in_use,
			(SELECT COUNT(*) FROM computers WHERE usage_status = 'available' AND lifecycle = 'active') AS computers_available`

	var counts Counts
	if err := r.DB.GetContext(ctx, &counts, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to query counts: %w", err)
	}
	return &counts, nil
}
