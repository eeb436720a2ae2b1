package router

import (
	"log/slog"
	"net/http"

	"internet-cafe-api/internal/config"
	"internet-cafe-api/internal/handler"
	"internet-cafe-api/internal/middleware"

	"github.com/gorilla/mux"
)

const apiPrefix = "/api/v1"

// NewRouter creates a new router and sets up the routes with security middleware.
// A nil limiter selects the in-process rate limiter.
func NewRouter(h handler.Handlers, cfg *config.Config, limiter middleware.RateLimiter, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()

	securityMW := middleware.NewSecurityMiddleware(&cfg.Security, limiter, logger)
	loggingMW := middleware.NewLoggingMiddleware(logger)

	// Apply global middleware in order
	r.Use(securityMW.TrustedProxy)
	r.Use(loggingMW.LogRequests)
	r.Use(securityMW.SecurityHeaders)
	r.Use(securityMW.CORS)
	r.Use(securityMW.RateLimit)
	r.Use(securityMW.RequestTimeout)

	// Full paths on the root router. Routes of a PathPrefix subrouter all match the prefix,
	// which clears an earlier method mismatch and turns a 405 into a 404.
	// Users
	r.HandleFunc(apiPrefix+"/auth/login", h.Users.LoginHandler).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/users", h.Users.RegisterUserHandler).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/users", h.Users.ListUsersHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/users/{id}", h.Users.GetUserHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/users/{id}", h.Users.UpdateProfileHandler).Methods(http.MethodPut)
	r.HandleFunc(apiPrefix+"/users/{id}/status", h.Users.ChangeStatusHandler).Methods(http.MethodPut)
	r.HandleFunc(apiPrefix+"/users/{id}/password", h.Users.ChangePasswordHandler).Methods(http.MethodPut)
	r.HandleFunc(apiPrefix+"/users/{id}/account", h.Users.GetUserAccountHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/users/{id}/sessions", h.Users.ListUserSessionsHandler).Methods(http.MethodGet)

	// Ledger
	r.HandleFunc(apiPrefix+"/accounts/{id}", h.Accounts.GetAccountHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/accounts/{id}/deposit", h.Accounts.DepositHandler).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/accounts/{id}/withdraw", h.Accounts.WithdrawHandler).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/accounts/{id}/transactions", h.Accounts.ListTransactionsHandler).Methods(http.MethodGet)

	// Computers
	r.HandleFunc(apiPrefix+"/computers", h.Computers.CreateComputerHandler).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/computers", h.Computers.GetAllComputersHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/computers/available", h.Computers.GetAvailableComputersHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/computers/{id}", h.Computers.GetComputerHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/computers/{id}", h.Computers.UpdateComputerHandler).Methods(http.MethodPut)
	r.HandleFunc(apiPrefix+"/computers/{id}", h.Computers.DeleteComputerHandler).Methods(http.MethodDelete)
	r.HandleFunc(apiPrefix+"/computers/{id}/status", h.Computers.SetStatusHandler).Methods(http.MethodPut)
	r.HandleFunc(apiPrefix+"/computers/{id}/maintenance", h.Computers.SetMaintenanceHandler).Methods(http.MethodPut)
	r.HandleFunc(apiPrefix+"/computers/{id}/session", h.Computers.GetComputerSessionHandler).Methods(http.MethodGet)

	// Sessions
	r.HandleFunc(apiPrefix+"/sessions", h.Sessions.StartSessionHandler).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/sessions", h.Sessions.ListSessionsHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/sessions/active", h.Sessions.ListActiveSessionsHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/sessions/remaining", h.Sessions.GetRemainingTimeHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/sessions/{id}", h.Sessions.GetSessionHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/sessions/{id}/end", h.Sessions.EndSessionHandler).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/sessions/{id}/terminate", h.Sessions.TerminateSessionHandler).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/sessions/{id}/cost", h.Sessions.GetSessionCostHandler).Methods(http.MethodGet)

	// Statistics
	r.HandleFunc(apiPrefix+"/statistics/summary", h.Statistics.SummaryHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/statistics/revenue/daily", h.Statistics.DailyRevenueHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/statistics/revenue/summary", h.Statistics.RevenueSummaryHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/statistics/usage/hourly", h.Statistics.HourlyUsageHandler).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/statistics/top-users", h.Statistics.TopUsersHandler).Methods(http.MethodGet)

	// Health check
	r.HandleFunc(apiPrefix+"/health", h.Health).Methods(http.MethodGet)

	return r
}
