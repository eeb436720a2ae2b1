package handler

import (
	"context"
	"time"

	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/repository"
	"internet-cafe-api/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mock implementations for testing. Unset function fields panic so a test fails loudly
// when a handler reaches a service call it was not expected to make.

type MockUserService struct {
	RegisterUserFunc   func(ctx context.Context, req service.RegisterUserRequest, actor uuid.UUID) (*model.User, error)
	GetUserFunc        func(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListUsersFunc      func(ctx context.Context, params repository.PaginationParams) (*repository.Page[model.User], error)
	UpdateProfileFunc  func(ctx context.Context, id uuid.UUID, req service.UpdateProfileRequest, actor uuid.UUID) (*model.User, error)
	ChangePasswordFunc func(ctx context.Context, id uuid.UUID, current, next string, actor uuid.UUID) error
	ChangeStatusFunc   func(ctx context.Context, id uuid.UUID, status model.UserStatus, actor uuid.UUID) (*model.User, error)
	AuthenticateFunc   func(ctx context.Context, username, password string) (*model.User, error)
}

func (m *MockUserService) RegisterUser(ctx context.Context, req service.RegisterUserRequest, actor uuid.UUID) (*model.User, error) {
	return m.RegisterUserFunc(ctx, req, actor)
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return m.GetUserFunc(ctx, id)
}

func (m *MockUserService) ListUsers(ctx context.Context, params repository.PaginationParams) (*repository.Page[model.User], error) {
	return m.ListUsersFunc(ctx, params)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, req service.UpdateProfileRequest, actor uuid.UUID) (*model.User, error) {
	return m.UpdateProfileFunc(ctx, id, req, actor)
}

func (m *MockUserService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string, actor uuid.UUID) error {
	return m.ChangePasswordFunc(ctx, id, current, next, actor)
}

func (m *MockUserService) ChangeStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, actor uuid.UUID) (*model.User, error) {
	return m.ChangeStatusFunc(ctx, id, status, actor)
}

func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	return m.AuthenticateFunc(ctx, username, password)
}

type MockAccountService struct {
	GetAccountByUserIDFunc func(ctx context.Context, userID uuid.UUID) (*model.Account, error)
	GetAccountDetailsFunc  func(ctx context.Context, id uuid.UUID) (*model.AccountDetails, error)
	ListTransactionsFunc   func(ctx context.Context, accountID uuid.UUID, params repository.PaginationParams) (*repository.Page[model.Transaction], error)
	DepositFunc            func(ctx context.Context, req service.DepositRequest, actor uuid.UUID) (*model.Transaction, error)
	WithdrawFunc           func(ctx context.Context, req service.WithdrawRequest, actor uuid.UUID) (*model.Transaction, error)
}

func (m *MockAccountService) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*model.Account, error) {
	return m.GetAccountByUserIDFunc(ctx, userID)
}

func (m *MockAccountService) GetAccountDetails(ctx context.Context, id uuid.UUID) (*model.AccountDetails, error) {
	return m.GetAccountDetailsFunc(ctx, id)
}

func (m *MockAccountService) ListTransactions(ctx context.Context, accountID uuid.UUID, params repository.PaginationParams) (*repository.Page[model.Transaction], error) {
	return m.ListTransactionsFunc(ctx, accountID, params)
}

func (m *MockAccountService) Deposit(ctx context.Context, req service.DepositRequest, actor uuid.UUID) (*model.Transaction, error) {
	return m.DepositFunc(ctx, req, actor)
}

func (m *MockAccountService) Withdraw(ctx context.Context, req service.WithdrawRequest, actor uuid.UUID) (*model.Transaction, error) {
	return m.WithdrawFunc(ctx, req, actor)
}

type MockComputerService struct {
	RegisterComputerFunc       func(ctx context.Context, req service.ComputerRequest, actor uuid.UUID) (*model.Computer, error)
	GetComputerFunc            func(ctx context.Context, id uuid.UUID) (*model.Computer, error)
	ListComputersFunc          func(ctx context.Context, params repository.PaginationParams) (*repository.Page[model.Computer], error)
	ListAvailableComputersFunc func(ctx context.Context) ([]model.Computer, error)
	ListComputersByStatusFunc  func(ctx context.Context, status model.UsageStatus) ([]model.Computer, error)
	UpdateComputerFunc         func(ctx context.Context, id uuid.UUID, req service.ComputerRequest, actor uuid.UUID) (*model.Computer, error)
	SetStatusFunc              func(ctx context.Context, id uuid.UUID, status model.UsageStatus, actor uuid.UUID) (*model.Computer, error)
	SetMaintenanceFunc         func(ctx context.Context, id uuid.UUID, reason string, actor uuid.UUID) (*model.Computer, error)
	RemoveComputerFunc         func(ctx context.Context, id uuid.UUID, actor uuid.UUID) error
}

func (m *MockComputerService) RegisterComputer(ctx context.Context, req service.ComputerRequest, actor uuid.UUID) (*model.Computer, error) {
	return m.RegisterComputerFunc(ctx, req, actor)
}

func (m *MockComputerService) GetComputer(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
	return m.GetComputerFunc(ctx, id)
}

func (m *MockComputerService) ListComputers(ctx context.Context, params repository.PaginationParams) (*repository.Page[model.Computer], error) {
	return m.ListComputersFunc(ctx, params)
}

func (m *MockComputerService) ListAvailableComputers(ctx context.Context) ([]model.Computer, error) {
	return m.ListAvailableComputersFunc(ctx)
}

func (m *MockComputerService) ListComputersByStatus(ctx context.Context, status model.UsageStatus) ([]model.Computer, error) {
	return m.ListComputersByStatusFunc(ctx, status)
}

func (m *MockComputerService) UpdateComputer(ctx context.Context, id uuid.UUID, req service.ComputerRequest, actor uuid.UUID) (*model.Computer, error) {
	return m.UpdateComputerFunc(ctx, id, req, actor)
}

func (m *MockComputerService) SetStatus(ctx context.Context, id uuid.UUID, status model.UsageStatus, actor uuid.UUID) (*model.Computer, error) {
	return m.SetStatusFunc(ctx, id, status, actor)
}

func (m *MockComputerService) SetMaintenance(ctx context.Context, id uuid.UUID, reason string, actor uuid.UUID) (*model.Computer, error) {
	return m.SetMaintenanceFunc(ctx, id, reason, actor)
}

func (m *MockComputerService) RemoveComputer(ctx context.Context, id uuid.UUID, actor uuid.UUID) error {
	return m.RemoveComputerFunc(ctx, id, actor)
}

type MockSessionService struct {
	StartSessionFunc               func(ctx context.Context, userID, computerID, actor uuid.UUID) (*model.SessionView, error)
	EndSessionFunc                 func(ctx context.Context, sessionID uuid.UUID, notes string, actor uuid.UUID) (*model.SessionView, error)
	TerminateSessionFunc           func(ctx context.Context, sessionID uuid.UUID, reason string, actor uuid.UUID) (*model.SessionView, error)
	GetRemainingTimeFunc           func(ctx context.Context, userID, computerID uuid.UUID) (*service.RemainingTime, error)
	CalculateSessionCostFunc       func(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error)
	GetSessionDetailsFunc          func(ctx context.Context, id uuid.UUID) (*model.SessionDetails, error)
	GetActiveSessionByComputerFunc func(ctx context.Context, computerID uuid.UUID) (*model.SessionView, error)
	ListActiveSessionsFunc         func(ctx context.Context) ([]model.SessionView, error)
	ListSessionsByUserFunc         func(ctx context.Context, userID uuid.UUID) ([]model.SessionView, error)
	ListSessionsByDateRangeFunc    func(ctx context.Context, from, to time.Time) ([]model.SessionView, error)
}

func (m *MockSessionService) StartSession(ctx context.Context, userID, computerID, actor uuid.UUID) (*model.SessionView, error) {
	return m.StartSessionFunc(ctx, userID, computerID, actor)
}

func (m *MockSessionService) EndSession(ctx context.Context, sessionID uuid.UUID, notes string, actor uuid.UUID) (*model.SessionView, error) {
	return m.EndSessionFunc(ctx, sessionID, notes, actor)
}

func (m *MockSessionService) TerminateSession(ctx context.Context, sessionID uuid.UUID, reason string, actor uuid.UUID) (*model.SessionView, error) {
	return m.TerminateSessionFunc(ctx, sessionID, reason, actor)
}

func (m *MockSessionService) GetRemainingTime(ctx context.Context, userID, computerID uuid.UUID) (*service.RemainingTime, error) {
	return m.GetRemainingTimeFunc(ctx, userID, computerID)
}

func (m *MockSessionService) CalculateSessionCost(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	return m.CalculateSessionCostFunc(ctx, sessionID)
}

func (m *MockSessionService) GetSessionDetails(ctx context.Context, id uuid.UUID) (*model.SessionDetails, error) {
	return m.GetSessionDetailsFunc(ctx, id)
}

func (m *MockSessionService) GetActiveSessionByComputer(ctx context.Context, computerID uuid.UUID) (*model.SessionView, error) {
	return m.GetActiveSessionByComputerFunc(ctx, computerID)
}

func (m *MockSessionService) ListActiveSessions(ctx context.Context) ([]model.SessionView, error) {
	return m.ListActiveSessionsFunc(ctx)
}

func (m *MockSessionService) ListSessionsByUser(ctx context.Context, userID uuid.UUID) ([]model.SessionView, error) {
	return m.ListSessionsByUserFunc(ctx, userID)
}

func (m *MockSessionService) ListSessionsByDateRange(ctx context.Context, from, to time.Time) ([]model.SessionView, error) {
	return m.ListSessionsByDateRangeFunc(ctx, from, to)
}

type MockStatisticsService struct {
	GetSummaryFunc        func(ctx context.Context, from, to time.Time) (*model.StatisticsSummary, error)
	GetRevenueByDayFunc   func(ctx context.Context, from, to time.Time) ([]model.DailyRevenue, error)
	GetUsageByHourFunc    func(ctx context.Context, from, to time.Time) ([]model.HourlyUsage, error)
	GetTopUsersFunc       func(ctx context.Context, from, to time.Time, limit int) ([]model.TopUser, error)
	GetRevenueSummaryFunc func(ctx context.Context, from, to time.Time) (*model.RevenueSummary, error)
}

func (m *MockStatisticsService) GetSummary(ctx context.Context, from, to time.Time) (*model.StatisticsSummary, error) {
	return m.GetSummaryFunc(ctx, from, to)
}

func (m *MockStatisticsService) GetRevenueByDay(ctx context.Context, from, to time.Time) ([]model.DailyRevenue, error) {
	return m.GetRevenueByDayFunc(ctx, from, to)
}

func (m *MockStatisticsService) GetUsageByHour(ctx context.Context, from, to time.Time) ([]model.HourlyUsage, error) {
	return m.GetUsageByHourFunc(ctx, from, to)
}

func (m *MockStatisticsService) GetTopUsers(ctx context.Context, from, to time.Time, limit int) ([]model.TopUser, error) {
	return m.GetTopUsersFunc(ctx, from, to, limit)
}

func (m *MockStatisticsService) GetRevenueSummary(ctx context.Context, from, to time.Time) (*model.RevenueSummary, error) {
	return m.GetRevenueSummaryFunc(ctx, from, to)
}

type MockPinger struct {
	Err error
}

func (m *MockPinger) PingContext(context.Context) error {
	return m.Err
}
