package service

import (
	"context"
	"testing"

	"internet-cafe-api/internal/audit"
	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/repository"
	"internet-cafe-api/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validComputerRequest() ComputerRequest {
	return ComputerRequest{
		Name:           "PC-7",
		IPAddress:      "192.168.0.7",
		Specifications: "RTX 4070, 32GB",
		Location:       "Row B",
		HourlyRate:     decimal.NewFromInt(12000),
	}
}

func TestComputerService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	computer, err := f.computers.RegisterComputer(ctx, validComputerRequest(), f.actor)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, computer.ID)
	assert.Equal(t, model.StatusAvailable, computer.UsageStatus)
	assert.Equal(t, f.actor, computer.CreatedBy)
	assert.Equal(t, []string{audit.ActionComputerRegistered}, f.audit.actions())

	_, err = f.computers.RegisterComputer(ctx, validComputerRequest(), f.actor)
	requireAppError(t, err, errors.ErrorCodeAlreadyExists)

	invalid := validComputerRequest()
	invalid.Name = ""
	invalid.IPAddress = "not-an-ip"
	invalid.HourlyRate = decimal.NewFromInt(-1)
	_, err = f.computers.RegisterComputer(ctx, invalid, f.actor)
	requireAppError(t, err, errors.ErrorCodeValidation)
}

func TestComputerService_UpdateKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, _ := f.seedUser(t, "alice", "50000")
	computer := f.seedComputer(t, "PC-1", "10000")
	_, err := f.sessions.StartSession(ctx, user.ID, computer.ID, f.actor)
	require.NoError(t, err)

	req := validComputerRequest()
	req.HourlyRate = decimal.NewFromInt(8000)
	updated, err := f.computers.UpdateComputer(ctx, computer.ID, req, f.actor)
	require.NoError(t, err)
	assert.Equal(t, "PC-7", updated.Name)
	assert.Equal(t, model.StatusInUse, f.store.computer(computer.ID).UsageStatus)
	requireAmount(t, "8000.00", f.store.computer(computer.ID).HourlyRate)

	_, err = f.computers.UpdateComputer(ctx, uuid.New(), req, f.actor)
	requireAppError(t, err, errors.ErrorCodeNotFound)
}

func TestComputerService_StatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	computer := f.seedComputer(t, "PC-1", "10000")

	maintained, err := f.computers.SetMaintenance(ctx, computer.ID, "replace fan", f.actor)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMaintenance, maintained.UsageStatus)
	assert.NotNil(t, maintained.LastMaintenanceDate)
	assert.Contains(t, f.audit.last().Detail, "replace fan")

	available, err := f.computers.IsAvailable(ctx, computer.ID)
	require.NoError(t, err)
	assert.False(t, available)

	again, err := f.computers.SetStatus(ctx, computer.ID, model.StatusMaintenance, f.actor)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMaintenance, again.UsageStatus)
	assert.Len(t, f.audit.actions(), 1)

	_, err = f.computers.SetStatus(ctx, computer.ID, model.StatusAvailable, f.actor)
	require.NoError(t, err)
	available, err = f.computers.IsAvailable(ctx, computer.ID)
	require.NoError(t, err)
	assert.True(t, available)

	_, err = f.computers.SetStatus(ctx, computer.ID, model.StatusInUse, f.actor)
	requireAppError(t, err, errors.ErrorCodeInvalidParameter)

	_, err = f.computers.SetStatus(ctx, computer.ID, "broken", f.actor)
	requireAppError(t, err, errors.ErrorCodeInvalidParameter)
}

func TestComputerService_InUseComputerIsProtected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, _ := f.seedUser(t, "alice", "50000")
	computer := f.seedComputer(t, "PC-1", "10000")
	_, err := f.sessions.StartSession(ctx, user.ID, computer.ID, f.actor)
	require.NoError(t, err)

	_, err = f.computers.SetMaintenance(ctx, computer.ID, "", f.actor)
	requireConflict(t, err, ReasonInvalidTransition)

	_, err = f.computers.SetStatus(ctx, computer.ID, model.StatusAvailable, f.actor)
	requireConflict(t, err, ReasonComputerHasSession)

	err = f.computers.RemoveComputer(ctx, computer.ID, f.actor)
	requireConflict(t, err, ReasonComputerHasSession)
	assert.Equal(t, model.StatusInUse, f.store.computer(computer.ID).UsageStatus)
	assert.Equal(t, model.LifecycleActive, f.store.computer(computer.ID).Lifecycle)
}

func TestComputerService_Remove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	computer := f.seedComputer(t, "PC-1", "10000")

	require.NoError(t, f.computers.RemoveComputer(ctx, computer.ID, f.actor))
	assert.Equal(t, model.LifecycleCancelled, f.store.computer(computer.ID).Lifecycle)

	_, err := f.computers.GetComputer(ctx, computer.ID)
	requireAppError(t, err, errors.ErrorCodeNotFound)

	err = f.computers.RemoveComputer(ctx, computer.ID, f.actor)
	requireAppError(t, err, errors.ErrorCodeNotFound)
	assert.Equal(t, []string{audit.ActionComputerRemoved}, f.audit.actions())
}

func TestComputerService_RemoveRefusesInUseWithoutSessionRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	computer := f.seedComputer(t, "PC-1", "10000")

	// A session claimed the computer but its row is not visible yet.
	f.store.mu.Lock()
	c := f.store.computers[computer.ID]
	c.UsageStatus = model.StatusInUse
	f.store.computers[computer.ID] = c
	f.store.mu.Unlock()

	err := f.computers.RemoveComputer(ctx, computer.ID, f.actor)
	requireConflict(t, err, ReasonComputerHasSession)
	assert.Equal(t, model.LifecycleActive, f.store.computer(computer.ID).Lifecycle)
	assert.Empty(t, f.audit.actions())
}

func TestComputerService_Listing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedComputer(t, "PC-1", "10000")
	second := f.seedComputer(t, "PC-2", "10000")
	f.seedComputer(t, "PC-3", "10000")
	_, err := f.computers.SetMaintenance(ctx, second.ID, "", f.actor)
	require.NoError(t, err)

	page, err := f.computers.ListComputers(ctx, repository.PaginationParams{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Len(t, page.Items, 2)

	available, err := f.computers.ListAvailableComputers(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	maintenance, err := f.computers.ListComputersByStatus(ctx, model.StatusMaintenance)
	require.NoError(t, err)
	require.Len(t, maintenance, 1)
	assert.Equal(t, second.ID, maintenance[0].ID)

	_, err = f.computers.ListComputersByStatus(ctx, "unknown")
	requireAppError(t, err, errors.ErrorCodeInvalidParameter)
}
