package service

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"internet-cafe-api/internal/audit"
	"internet-cafe-api/internal/model"
	"internet-cafe-api/pkg/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Record(event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.events))
	for _, e := range r.events {
		actions = append(actions, e.Action)
	}
	return actions
}

func (r *recordingAudit) last() audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fixture struct {
	store     *fakeStore
	audit     *recordingAudit
	clock     time.Time
	actor     uuid.UUID
	sessions  *SessionService
	accounts  *AccountService
	computers *ComputerService
	users     *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		store: newFakeStore(),
		audit: &recordingAudit{},
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		actor: uuid.New(),
	}
	f.sessions = NewSessionService(f.store, f.audit, logger)
	f.sessions.now = func() time.Time { return f.clock }
	f.accounts = NewAccountService(f.store, f.audit, logger)
	f.computers = NewComputerService(f.store, f.audit, logger)
	f.users = NewUserService(f.store, f.audit, logger)
	f.users.hashCost = bcrypt.MinCost
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

// seedUser stores an active user with an account holding balance.
func (f *fixture) seedUser(t *testing.T, name, balance string) (model.User, model.Account) {
	t.Helper()

	user := model.User{
		ID:        uuid.New(),
		Username:  name,
		Email:     name + "@example.com",
		FullName:  name,
		Role:      model.RoleCustomer,
		Status:    model.UserStatusActive,
		Lifecycle: model.LifecycleActive,
	}
	account := model.Account{
		ID:        uuid.New(),
		UserID:    user.ID,
		Balance:   decimal.RequireFromString(balance),
		Lifecycle: model.LifecycleActive,
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.users[user.ID] = user
	f.store.accounts[account.ID] = account
	return user, account
}

// seedComputer stores an Available computer with the given hourly rate.
func (f *fixture) seedComputer(t *testing.T, name, rate string) model.Computer {
	t.Helper()

	computer := model.Computer{
		ID:          uuid.New(),
		Name:        name,
		IPAddress:   "10.0.0." + name[len(name)-1:],
		HourlyRate:  decimal.RequireFromString(rate),
		UsageStatus: model.StatusAvailable,
		Lifecycle:   model.LifecycleActive,
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.computers[computer.ID] = computer
	return computer
}

func requireAppError(t *testing.T, err error, code errors.ErrorCode) *errors.AppError {
	t.Helper()

	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func requireConflict(t *testing.T, err error, reason string) {
	t.Helper()

	appErr := requireAppError(t, err, errors.ErrorCodeConflict)
	require.Equal(t, reason, appErr.Details["reason"])
}

func requireAmount(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.Equal(t, expected, actual.StringFixed(2))
}
