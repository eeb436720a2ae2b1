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
)

// SessionRepository is an interface for interacting with usage sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session, actor uuid.UUID) error
	GetSessionByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	GetActiveSessionByUser(ctx context.Context, userID uuid.UUID) (*model.Session, error)
	GetActiveSessionByComputer(ctx context.Context, computerID uuid.UUID) (*model.Session, error)
	ListActiveSessions(ctx context.Context) ([]model.Session, error)
	ListSessionsByUser(ctx context.Context, userID uuid.UUID) ([]model.Session, error)
	ListSessionsByDateRange(ctx context.Context, from, to time.Time) ([]model.Session, error)
	CloseSession(ctx context.Context, session *model.Session, actor uuid.UUID) error
}

type sessionRepository struct {
	DB database.DBTX
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db database.DBTX) SessionRepository {
	return &sessionRepository{DB: db}
}

const sessionColumns = `id, user_id, computer_id, start_time, end_time, duration_seconds, total_cost, status, notes,
		lifecycle, created_at, created_by, updated_at, updated_by`

func scanSession(row rowScanner) (*model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.UserID, &s.ComputerID, &s.StartTime, &s.EndTime, &s.DurationSeconds, &s.TotalCost,
		&s.Status, &s.Notes, &s.Lifecycle, &s.CreatedAt, &s.CreatedBy, &s.UpdatedAt, &s.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession inserts an active session. The partial unique indexes on active sessions
// reject a second active session for the same computer or user.
func (r *sessionRepository) CreateSession(ctx context.Context, session *model.Session, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	session.Lifecycle = model.LifecycleActive
	session.Touch(actor, time.Now().UTC())

	query := `
		INSERT INTO sessions (id, user_id, computer_id, start_time, duration_seconds, total_cost, status, notes,
			lifecycle, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.DB.ExecContext(ctx, query,
		session.ID, session.UserID, session.ComputerID, session.StartTime, session.DurationSeconds,
		session.TotalCost, session.Status, session.Notes, session.Lifecycle,
		session.CreatedAt, session.CreatedBy, session.UpdatedAt, session.UpdatedBy,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "sessions_one_active_per_computer"):
			return ErrComputerNotAvailable
		case isUniqueViolation(err, "sessions_one_active_per_user"):
			return ErrActiveSessionExists
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSessionByID retrieves a session by its ID.
func (r *sessionRepository) GetSessionByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1 AND lifecycle = 'active'`, id)
}

// GetActiveSessionByUser retrieves the user's active session.
func (r *sessionRepository) GetActiveSessionByUser(ctx context.Context, userID uuid.UUID) (*model.Session, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = $1 AND status = 'active' AND lifecycle = 'active'`, userID)
}

// GetActiveSessionByComputer retrieves the active session bound to a computer.
func (r *sessionRepository) GetActiveSessionByComputer(ctx context.Context, computerID uuid.UUID) (*model.Session, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM sessions
		WHERE computer_id = $1 AND status = 'active' AND lifecycle = 'active'`, computerID)
}

func (r *sessionRepository) getOne(ctx context.Context, query string, arg any) (*model.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	session, err := scanSession(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListActiveSessions retrieves every active session, oldest first.
func (r *sessionRepository) ListActiveSessions(ctx context.Context) ([]model.Session, error) {
	return r.list(ctx, `SELECT `+sessionColumns+` FROM sessions
		WHERE status = 'active' AND lifecycle = 'active' ORDER BY start_time`)
}

// ListSessionsByUser retrieves a user's sessions, newest first.
func (r *sessionRepository) ListSessionsByUser(ctx context.Context, userID uuid.UUID) ([]model.Session, error) {
	return r.list(ctx, `SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = $1 AND lifecycle = 'active' ORDER BY start_time DESC`, userID)
}

// ListSessionsByDateRange retrieves sessions that started inside [from, to].
func (r *sessionRepository) ListSessionsByDateRange(ctx context.Context, from, to time.Time) ([]model.Session, error) {
	return r.list(ctx, `SELECT `+sessionColumns+` FROM sessions
		WHERE start_time >= $1 AND start_time <= $2 AND lifecycle = 'active' ORDER BY start_time`, from, to)
}

func (r *sessionRepository) list(ctx context.Context, query string, args ...any) ([]model.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sessions, nil
}

// CloseSession writes the closing fields, but only while the row is still active.
// A second close of the same session returns ErrSessionNotActive.
func (r *sessionRepository) CloseSession(ctx context.Context, session *model.Session, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	session.Touch(actor, time.Now().UTC())

	query := `
		UPDATE sessions
		SET end_time = $1, duration_seconds = $2, total_cost = $3, status = $4, notes = $5,
			updated_at = $6, updated_by = $7
		WHERE id = $8 AND status = 'active' AND lifecycle = 'active'`

	result, err := r.DB.ExecContext(ctx, query,
		session.EndTime, session.DurationSeconds, session.TotalCost, session.Status, session.Notes,
		session.UpdatedAt, session.UpdatedBy, session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	return checkRowsAffected(result, ErrSessionNotActive)
}
