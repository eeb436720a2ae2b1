package handler

import (
	"context"
	"net/http"
	"time"

	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/repository"
	"internet-cafe-api/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserService is the user operations the HTTP layer needs.
type UserService interface {
	RegisterUser(ctx context.Context, req service.RegisterUserRequest, actor uuid.UUID) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context, params repository.PaginationParams) (*repository.Page[model.User], error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req service.UpdateProfileRequest, actor uuid.UUID) (*model.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, next string, actor uuid.UUID) error
	ChangeStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, actor uuid.UUID) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

// AccountService is the ledger operations the HTTP layer needs.
type AccountService interface {
	GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*model.Account, error)
	GetAccountDetails(ctx context.Context, id uuid.UUID) (*model.AccountDetails, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, params repository.PaginationParams) (*repository.Page[model.Transaction], error)
	Deposit(ctx context.Context, req service.DepositRequest, actor uuid.UUID) (*model.Transaction, error)
	Withdraw(ctx context.Context, req service.WithdrawRequest, actor uuid.UUID) (*model.Transaction, error)
}

// ComputerService is the registry operations the HTTP layer needs.
type ComputerService interface {
	RegisterComputer(ctx context.Context, req service.ComputerRequest, actor uuid.UUID) (*model.Computer, error)
	GetComputer(ctx context.Context, id uuid.UUID) (*model.Computer, error)
	ListComputers(ctx context.Context, params repository.PaginationParams) (*repository.Page[model.Computer], error)
	ListAvailableComputers(ctx context.Context) ([]model.Computer, error)
	ListComputersByStatus(ctx context.Context, status model.UsageStatus) ([]model.Computer, error)
	UpdateComputer(ctx context.Context, id uuid.UUID, req service.ComputerRequest, actor uuid.UUID) (*model.Computer, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.UsageStatus, actor uuid.UUID) (*model.Computer, error)
	SetMaintenance(ctx context.Context, id uuid.UUID, reason string, actor uuid.UUID) (*model.Computer, error)
	RemoveComputer(ctx context.Context, id uuid.UUID, actor uuid.UUID) error
}

// SessionService is the session engine operations the HTTP layer needs.
type SessionService interface {
	StartSession(ctx context.Context, userID, computerID, actor uuid.UUID) (*model.SessionView, error)
	EndSession(ctx context.Context, sessionID uuid.UUID, notes string, actor uuid.UUID) (*model.SessionView, error)
	TerminateSession(ctx context.Context, sessionID uuid.UUID, reason string, actor uuid.UUID) (*model.SessionView, error)
	GetRemainingTime(ctx context.Context, userID, computerID uuid.UUID) (*service.RemainingTime, error)
	CalculateSessionCost(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error)
	GetSessionDetails(ctx context.Context, id uuid.UUID) (*model.SessionDetails, error)
	GetActiveSessionByComputer(ctx context.Context, computerID uuid.UUID) (*model.SessionView, error)
	ListActiveSessions(ctx context.Context) ([]model.SessionView, error)
	ListSessionsByUser(ctx context.Context, userID uuid.UUID) ([]model.SessionView, error)
	ListSessionsByDateRange(ctx context.Context, from, to time.Time) ([]model.SessionView, error)
}

// StatisticsService is the reporting operations the HTTP layer needs.
type StatisticsService interface {
	GetSummary(ctx context.Context, from, to time.Time) (*model.StatisticsSummary, error)
	GetRevenueByDay(ctx context.Context, from, to time.Time) ([]model.DailyRevenue, error)
	GetUsageByHour(ctx context.Context, from, to time.Time) ([]model.HourlyUsage, error)
	GetTopUsers(ctx context.Context, from, to time.Time, limit int) ([]model.TopUser, error)
	GetRevenueSummary(ctx context.Context, from, to time.Time) (*model.RevenueSummary, error)
}

// Pinger reports whether the database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var (
	_ UserService       = (*service.UserService)(nil)
	_ AccountService    = (*service.AccountService)(nil)
	_ ComputerService   = (*service.ComputerService)(nil)
	_ SessionService    = (*service.SessionService)(nil)
	_ StatisticsService = (*service.StatisticsService)(nil)
)

// UserHandlerInterface defines the contract for user HTTP handlers.
type UserHandlerInterface interface {
	RegisterUserHandler(w http.ResponseWriter, r *http.Request)
	ListUsersHandler(w http.ResponseWriter, r *http.Request)
	GetUserHandler(w http.ResponseWriter, r *http.Request)
	UpdateProfileHandler(w http.ResponseWriter, r *http.Request)
	ChangeStatusHandler(w http.ResponseWriter, r *http.Request)
	ChangePasswordHandler(w http.ResponseWriter, r *http.Request)
	GetUserAccountHandler(w http.ResponseWriter, r *http.Request)
	ListUserSessionsHandler(w http.ResponseWriter, r *http.Request)
	LoginHandler(w http.ResponseWriter, r *http.Request)
}

// AccountHandlerInterface defines the contract for ledger HTTP handlers.
type AccountHandlerInterface interface {
	GetAccountHandler(w http.ResponseWriter, r *http.Request)
	DepositHandler(w http.ResponseWriter, r *http.Request)
	WithdrawHandler(w http.ResponseWriter, r *http.Request)
	ListTransactionsHandler(w http.ResponseWriter, r *http.Request)
}

// ComputerHandlerInterface defines the contract for computer HTTP handlers.
type ComputerHandlerInterface interface {
	CreateComputerHandler(w http.ResponseWriter, r *http.Request)
	GetAllComputersHandler(w http.ResponseWriter, r *http.Request)
	GetAvailableComputersHandler(w http.ResponseWriter, r *http.Request)
	GetComputerHandler(w http.ResponseWriter, r *http.Request)
	UpdateComputerHandler(w http.ResponseWriter, r *http.Request)
	DeleteComputerHandler(w http.ResponseWriter, r *http.Request)
	SetStatusHandler(w http.ResponseWriter, r *http.Request)
	SetMaintenanceHandler(w http.ResponseWriter, r *http.Request)
	GetComputerSessionHandler(w http.ResponseWriter, r *http.Request)
}

// SessionHandlerInterface defines the contract for session HTTP handlers.
type SessionHandlerInterface interface {
	StartSessionHandler(w http.ResponseWriter, r *http.Request)
	ListActiveSessionsHandler(w http.ResponseWriter, r *http.Request)
	ListSessionsHandler(w http.ResponseWriter, r *http.Request)
	GetRemainingTimeHandler(w http.ResponseWriter, r *http.Request)
	GetSessionHandler(w http.ResponseWriter, r *http.Request)
	EndSessionHandler(w http.ResponseWriter, r *http.Request)
	TerminateSessionHandler(w http.ResponseWriter, r *http.Request)
	GetSessionCostHandler(w http.ResponseWriter, r *http.Request)
}

// StatisticsHandlerInterface defines the contract for reporting HTTP handlers.
type StatisticsHandlerInterface interface {
	SummaryHandler(w http.ResponseWriter, r *http.Request)
	DailyRevenueHandler(w http.ResponseWriter, r *http.Request)
	HourlyUsageHandler(w http.ResponseWriter, r *http.Request)
	TopUsersHandler(w http.ResponseWriter, r *http.Request)
	RevenueSummaryHandler(w http.ResponseWriter, r *http.Request)
}

// Handlers groups every handler the router mounts.
type Handlers struct {
	Users      UserHandlerInterface
	Accounts   AccountHandlerInterface
	Computers  ComputerHandlerInterface
	Sessions   SessionHandlerInterface
	Statistics StatisticsHandlerInterface
	Health     http.HandlerFunc
}

// Ensure the handlers implement their interfaces at compile time
var (
	_ UserHandlerInterface       = (*UserHandler)(nil)
	_ AccountHandlerInterface    = (*AccountHandler)(nil)
	_ ComputerHandlerInterface   = (*ComputerHandler)(nil)
	_ SessionHandlerInterface    = (*SessionHandler)(nil)
	_ StatisticsHandlerInterface = (*StatisticsHandler)(nil)
)
