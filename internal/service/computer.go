package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"internet-cafe-api/internal/audit"
	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/repository"
	"internet-cafe-api/pkg/errors"
	"internet-cafe-api/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComputerRequest carries the editable fields of a computer.
type ComputerRequest struct {
	Name           string
	IPAddress      string
	Specifications string
	Location       string
	HourlyRate     decimal.Decimal
}

// ComputerService handles business logic for the computer registry
type ComputerService struct {
	store  Store
	audit  AuditRecorder
	logger *slog.Logger
}

// NewComputerService creates a new computer service
func NewComputerService(store Store, recorder AuditRecorder, logger *slog.Logger) *ComputerService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ComputerService{store: store, audit: recorder, logger: logger}
}

// RegisterComputer adds a computer to the registry. New computers start Available.
func (s *ComputerService) RegisterComputer(ctx context.Context, req ComputerRequest, actor uuid.UUID) (*model.Computer, error) {
	computer := model.Computer{
		ID:             uuid.New(),
		Name:           req.Name,
		IPAddress:      strings.TrimSpace(req.IPAddress),
		Specifications: req.Specifications,
		Location:       req.Location,
		HourlyRate:     req.HourlyRate,
		UsageStatus:    model.StatusAvailable,
		Lifecycle:      model.LifecycleActive,
	}
	if errs := validation.ValidateComputerInput(&computer); len(errs) > 0 {
		return nil, errors.ValidationError(strings.Join(errs, "; "))
	}

	if err := s.store.Repos().Computers.CreateComputer(ctx, &computer, actor); err != nil {
		return nil, translate(err, "register computer")
	}

	s.audit.Record(audit.Event{
		Action:   audit.ActionComputerRegistered,
		Entity:   audit.EntityComputer,
		EntityID: computer.ID,
		ActorID:  actor,
		Detail:   fmt.Sprintf("Computer %s registered at %s", computer.Name, computer.IPAddress),
	})
	s.logger.Info("computer registered", "computer_id", computer.ID, "name", computer.Name)

	return &computer, nil
}

// GetComputer retrieves a computer by its ID
func (s *ComputerService) GetComputer(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
	computer, err := s.store.Repos().Computers.GetComputerByID(ctx, id)
	if err != nil {
		return nil, translate(err, "retrieve computer")
	}
	return computer, nil
}

// ListComputers retrieves computers with pagination
func (s *ComputerService) ListComputers(ctx context.Context, params repository.PaginationParams) (*repository.Page[model.Computer], error) {
	page, err := s.store.Repos().Computers.ListComputers(ctx, params)
	if err != nil {
		return nil, translate(err, "retrieve computers")
	}

	s.logger.Debug("retrieved computers", "count", len(page.Items), "offset", params.Offset, "limit", params.Limit)
	return page, nil
}

// ListAvailableComputers returns every computer that can start a session
func (s *ComputerService) ListAvailableComputers(ctx context.Context) ([]model.Computer, error) {
	return s.ListComputersByStatus(ctx, model.StatusAvailable)
}

// ListComputersByStatus returns every computer in the given status
func (s *ComputerService) ListComputersByStatus(ctx context.Context, status model.UsageStatus) ([]model.Computer, error) {
	if !status.Valid() {
		return nil, errors.InvalidParameterError("status", fmt.Sprintf("invalid usage status: %s", status))
	}

	computers, err := s.store.Repos().Computers.ListComputersByStatus(ctx, status)
	if err != nil {
		return nil, translate(err, "retrieve computers")
	}
	return computers, nil
}

// IsAvailable reports whether a computer can start a session right now
func (s *ComputerService) IsAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	computer, err := s.GetComputer(ctx, id)
	if err != nil {
		return false, err
	}
	return computer.UsageStatus == model.StatusAvailable, nil
}

// UpdateComputer replaces the descriptive fields and hourly rate of a computer.
// A new rate applies to sessions closed after the change.
func (s *ComputerService) UpdateComputer(ctx context.Context, id uuid.UUID, req ComputerRequest, actor uuid.UUID) (*model.Computer, error) {
	repos := s.store.Repos()

	computer, err := repos.Computers.GetComputerByID(ctx, id)
	if err != nil {
		return nil, translate(err, "retrieve computer for update")
	}

	computer.Name = req.Name
	computer.IPAddress = strings.TrimSpace(req.IPAddress)
	computer.Specifications = req.Specifications
	computer.Location = req.Location
	computer.HourlyRate = req.HourlyRate
	if errs := validation.ValidateComputerInput(computer); len(errs) > 0 {
		return nil, errors.ValidationError(strings.Join(errs, "; "))
	}

	if err := repos.Computers.UpdateComputer(ctx, computer, actor); err != nil {
		return nil, translate(err, "update computer")
	}

	s.logger.Info("computer updated", "computer_id", id)
	return computer, nil
}

// SetStatus moves a computer between Available and Maintenance.
// InUse is only entered by starting a session.
func (s *ComputerService) SetStatus(ctx context.Context, id uuid.UUID, status model.UsageStatus, actor uuid.UUID) (*model.Computer, error) {
	return s.setStatus(ctx, id, status, "", actor)
}

// SetMaintenance takes a computer out of service.
func (s *ComputerService) SetMaintenance(ctx context.Context, id uuid.UUID, reason string, actor uuid.UUID) (*model.Computer, error) {
	return s.setStatus(ctx, id, model.StatusMaintenance, reason, actor)
}

func (s *ComputerService) setStatus(ctx context.Context, id uuid.UUID, status model.UsageStatus, reason string, actor uuid.UUID) (*model.Computer, error) {
	if !status.Valid() {
		return nil, errors.InvalidParameterError("status", fmt.Sprintf("invalid usage status: %s", status))
	}
	if status == model.StatusInUse {
		return nil, errors.InvalidParameterError("status", "in_use is set by starting a session")
	}

	var (
		computer *model.Computer
		previous model.UsageStatus
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		computer, err = repos.Computers.GetComputerByID(ctx, id)
		if err != nil {
			return err
		}
		previous = computer.UsageStatus
		if previous == status {
			return nil
		}
		if !previous.CanTransitionTo(status) {
			return conflict(ReasonInvalidTransition,
				fmt.Sprintf("cannot change computer status from %s to %s", previous, status))
		}

		if previous == model.StatusInUse {
			if err := ensureNoActiveSession(ctx, repos, id); err != nil {
				return err
			}
		}

		if err := repos.Computers.CompareAndSetStatus(ctx, id, previous, status, actor); err != nil {
			return err
		}
		computer, err = repos.Computers.GetComputerByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, translate(err, "change computer status")
	}
	if previous == status {
		return computer, nil
	}

	detail := fmt.Sprintf("Computer %s changed from %s to %s", computer.Name, previous, status)
	if reason != "" {
		detail += ": " + reason
	}
	s.audit.Record(audit.Event{
		Action:   audit.ActionComputerStatusChanged,
		Entity:   audit.EntityComputer,
		EntityID: id,
		ActorID:  actor,
		Detail:   detail,
	})
	s.logger.Info("computer status changed", "computer_id", id, "from", previous, "to", status)

	return computer, nil
}

// RemoveComputer soft-deletes a computer. Computers with an active session cannot be removed.
func (s *ComputerService) RemoveComputer(ctx context.Context, id uuid.UUID, actor uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Computers.GetComputerByID(ctx, id); err != nil {
			return err
		}
		if err := ensureNoActiveSession(ctx, repos, id); err != nil {
			return err
		}
		return repos.Computers.CancelComputer(ctx, id, actor)
	})
	if err != nil {
		return translate(err, "remove computer")
	}

	s.audit.Record(audit.Event{
		Action:   audit.ActionComputerRemoved,
		Entity:   audit.EntityComputer,
		EntityID: id,
		ActorID:  actor,
		Detail:   fmt.Sprintf("Computer %s removed", id),
	})
	s.logger.Info("computer removed", "computer_id", id)
	return nil
}

func ensureNoActiveSession(ctx context.Context, repos repository.Repositories, computerID uuid.UUID) error {
	_, err := repos.Sessions.GetActiveSessionByComputer(ctx, computerID)
	switch {
	case err == nil:
		return conflict(ReasonComputerHasSession, "computer has an active session")
	case isErr(err, repository.ErrSessionNotFound):
		return nil
	default:
		return err
	}
}
