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

// ComputerRepository is an interface for interacting with computer data.
type ComputerRepository interface {
	CreateComputer(ctx context.Context, computer *model.Computer, actor uuid.UUID) error
	GetComputerByID(ctx context.Context, id uuid.UUID) (*model.Computer, error)
	ListComputers(ctx context.Context, params PaginationParams) (*Page[model.Computer], error)
	ListComputersByStatus(ctx context.Context, status model.UsageStatus) ([]model.Computer, error)
	UpdateComputer(ctx context.Context, computer *model.Computer, actor uuid.UUID) error
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to model.UsageStatus, actor uuid.UUID) error
	CancelComputer(ctx context.Context, id uuid.UUID, actor uuid.UUID) error
}

type computerRepository struct {
	DB database.DBTX
}

// NewComputerRepository creates a new ComputerRepository.
func NewComputerRepository(db database.DBTX) ComputerRepository {
	return &computerRepository{DB: db}
}

const computerColumns = `id, name, ip_address, specifications, location, hourly_rate, usage_status,
		last_maintenance_date, last_used_date, lifecycle, created_at, created_by, updated_at, updated_by`

func scanComputer(row rowScanner) (*model.Computer, error) {
	var c model.Computer
	err := row.Scan(&c.ID, &c.Name, &c.IPAddress, &c.Specifications, &c.Location, &c.HourlyRate, &c.UsageStatus,
		&c.LastMaintenanceDate, &c.LastUsedDate, &c.Lifecycle, &c.CreatedAt, &c.CreatedBy, &c.UpdatedAt, &c.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanComputers(rows *sql.Rows) ([]model.Computer, error) {
	computers := []model.Computer{}
	for rows.Next() {
		c, err := scanComputer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan computer: %w", err)
		}
		computers = append(computers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return computers, nil
}

// CreateComputer adds a new computer to the database.
func (r *computerRepository) CreateComputer(ctx context.Context, computer *model.Computer, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	computer.Lifecycle = model.LifecycleActive
	computer.Touch(actor, time.Now().UTC())

	query := `
		INSERT INTO computers (id, name, ip_address, specifications, location, hourly_rate, usage_status,
			lifecycle, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(ctx, query,
		computer.ID, computer.Name, computer.IPAddress, computer.Specifications, computer.Location,
		computer.HourlyRate, computer.UsageStatus, computer.Lifecycle,
		computer.CreatedAt, computer.CreatedBy, computer.UpdatedAt, computer.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err, "computers_name_key", "computers_ip_address_key", "computers_pkey") {
			return fmt.Errorf("%w: %s", ErrDuplicateComputer, computer.Name)
		}
		return fmt.Errorf("failed to create computer: %w", err)
	}

	return nil
}

// GetComputerByID retrieves a single computer by its ID.
func (r *computerRepository) GetComputerByID(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `SELECT ` + computerColumns + ` FROM computers WHERE id = $1 AND lifecycle = 'active'`

	computer, err := scanComputer(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrComputerNotFound
		}
		return nil, fmt.Errorf("failed to get computer by ID: %w", err)
	}
	return computer, nil
}

// ListComputers retrieves computers ordered by name with pagination support.
func (r *computerRepository) ListComputers(ctx context.Context, params PaginationParams) (*Page[model.Computer], error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `SELECT ` + computerColumns + ` FROM computers WHERE lifecycle = 'active' ORDER BY name OFFSET $1 LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query computers: %w", err)
	}
	defer rows.Close()

	computers, err := scanComputers(rows)
	if err != nil {
		return nil, err
	}

	var totalCount int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM computers WHERE lifecycle = 'active'`).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count of computers: %w", err)
	}

	return &Page[model.Computer]{Items: computers, TotalCount: totalCount}, nil
}

// ListComputersByStatus retrieves all computers currently in the given status.
func (r *computerRepository) ListComputersByStatus(ctx context.Context, status model.UsageStatus) ([]model.Computer, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `SELECT ` + computerColumns + ` FROM computers WHERE usage_status = $1 AND lifecycle = 'active' ORDER BY name`

	rows, err := r.DB.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query computers by status: %w", err)
	}
	defer rows.Close()

	return scanComputers(rows)
}

// UpdateComputer updates the descriptive fields and rate of a computer. Status is not touched.
func (r *computerRepository) UpdateComputer(ctx context.Context, computer *model.Computer, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	computer.Touch(actor, time.Now().UTC())

	query := `
		UPDATE computers
		SET name = $1, ip_address = $2, specifications = $3, location = $4, hourly_rate = $5,
			updated_at = $6, updated_by = $7
		WHERE id = $8 AND lifecycle = 'active'`

	result, err := r.DB.ExecContext(ctx, query,
		computer.Name, computer.IPAddress, computer.Specifications, computer.Location, computer.HourlyRate,
		computer.UpdatedAt, computer.UpdatedBy, computer.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "computers_name_key", "computers_ip_address_key") {
			return fmt.Errorf("%w: %s", ErrDuplicateComputer, computer.Name)
		}
		return fmt.Errorf("failed to update computer: %w", err)
	}

	return checkRowsAffected(result, ErrComputerNotFound)
}

// CompareAndSetStatus moves a computer from one status to another in a single conditional update.
// It returns ErrStatusMismatch when the computer exists but is no longer in status from.
// Entering InUse stamps last_used_date; entering Maintenance stamps last_maintenance_date.
func (r *computerRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to model.UsageStatus, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	var lastUsed, lastMaintenance *time.Time
	switch to {
	case model.StatusInUse:
		lastUsed = &now
	case model.StatusMaintenance:
		lastMaintenance = &now
	}

	query := `
		UPDATE computers
		SET usage_status = $1,
			last_used_date = COALESCE($2, last_used_date),
			last_maintenance_date = COALESCE($3, last_maintenance_date),
			updated_at = $4, updated_by = $5
		WHERE id = $6 AND usage_status = $7 AND lifecycle = 'active'`

	result, err := r.DB.ExecContext(ctx, query, to, lastUsed, lastMaintenance, now, actor, id, from)
	if err != nil {
		return fmt.Errorf("failed to update computer status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	var exists bool
	err = r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM computers WHERE id = $1 AND lifecycle = 'active')`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check computer existence: %w", err)
	}
	if !exists {
		return ErrComputerNotFound
	}
	return ErrStatusMismatch
}

// CancelComputer soft-deletes a computer that is not in use. The usage status is checked by the
// UPDATE itself, so a session started concurrently makes it fail with ErrComputerInUse.
func (r *computerRepository) CancelComputer(ctx context.Context, id uuid.UUID, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE computers SET lifecycle = 'cancelled', updated_at = $1, updated_by = $2
		WHERE id = $3 AND lifecycle = 'active' AND usage_status <> 'in_use'`

	result, err := r.DB.ExecContext(ctx, query, time.Now().UTC(), actor, id)
	if err != nil {
		return fmt.Errorf("failed to remove computer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	var exists bool
	err = r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM computers WHERE id = $1 AND lifecycle = 'active')`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check computer existence: %w", err)
	}
	if !exists {
		return ErrComputerNotFound
	}
	return ErrComputerInUse
}
