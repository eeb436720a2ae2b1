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

// UserRepository is an interface for interacting with user data.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User, actor uuid.UUID) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context, params PaginationParams) (*Page[model.User], error)
	UpdateUser(ctx context.Context, user *model.User, actor uuid.UUID) error
	UpdateUserStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, actor uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, actor uuid.UUID) error
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type userRepository struct {
	DB database.DBTX
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.DBTX) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, email, password_hash, full_name, phone_number, address, date_of_birth,
		role, status, last_login_time, lifecycle, created_at, created_by, updated_at, updated_by`

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.PhoneNumber, &u.Address,
		&u.DateOfBirth, &u.Role, &u.Status, &u.LastLoginTime, &u.Lifecycle,
		&u.CreatedAt, &u.CreatedBy, &u.UpdatedAt, &u.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user.
func (r *userRepository) CreateUser(ctx context.Context, user *model.User, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user.Lifecycle = model.LifecycleActive
	user.Touch(actor, time.Now().UTC())

	query := `
		INSERT INTO users (id, username, email, password_hash, full_name, phone_number, address, date_of_birth,
			role, status, lifecycle, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.DB.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FullName, user.PhoneNumber, user.Address,
		user.DateOfBirth, user.Role, user.Status, user.Lifecycle,
		user.CreatedAt, user.CreatedBy, user.UpdatedAt, user.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "users_username_key", "users_email_key", "users_pkey") {
			return fmt.Errorf("%w: %s", ErrDuplicateUser, user.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a single active user by ID.
func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND lifecycle = 'active'`

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a single active user by username.
func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND lifecycle = 'active'`

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// ListUsers retrieves users ordered by username with pagination support.
func (r *userRepository) ListUsers(ctx context.Context, params PaginationParams) (*Page[model.User], error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE lifecycle = 'active' ORDER BY username OFFSET $1 LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	var totalCount int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE lifecycle = 'active'`).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count of users: %w", err)
	}

	return &Page[model.User]{Items: users, TotalCount: totalCount}, nil
}

// UpdateUser updates the mutable profile fields of a user.
func (r *userRepository) UpdateUser(ctx context.Context, user *model.User, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user.Touch(actor, time.Now().UTC())

	query := `
		UPDATE users
		SET email = $1, full_name = $2, phone_number = $3, address = $4, date_of_birth = $5, role = $6,
			updated_at = $7, updated_by = $8
		WHERE id = $9 AND lifecycle = 'active'`

	result, err := r.DB.ExecContext(ctx, query,
		user.Email, user.FullName, user.PhoneNumber, user.Address, user.DateOfBirth, user.Role,
		user.UpdatedAt, user.UpdatedBy, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return fmt.Errorf("%w: %s", ErrDuplicateUser, user.Email)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return checkRowsAffected(result, ErrUserNotFound)
}

// UpdateUserStatus sets the user's status.
func (r *userRepository) UpdateUserStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE users SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND lifecycle = 'active'`

	result, err := r.DB.ExecContext(ctx, query, status, time.Now().UTC(), actor, id)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	return checkRowsAffected(result, ErrUserNotFound)
}

// UpdatePasswordHash replaces the stored password hash.
func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE users SET password_hash = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND lifecycle = 'active'`

	result, err := r.DB.ExecContext(ctx, query, hash, time.Now().UTC(), actor, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return checkRowsAffected(result, ErrUserNotFound)
}

// RecordLogin stamps the last login time.
func (r *userRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.DB.ExecContext(ctx,
		`UPDATE users SET last_login_time = $1 WHERE id = $2 AND lifecycle = 'active'`, at, id)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}

	return checkRowsAffected(result, ErrUserNotFound)
}
