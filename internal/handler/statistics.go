package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"internet-cafe-api/internal/statistics"
	"internet-cafe-api/pkg/errors"
)

// DefaultStatisticsWindow is the reporting range used when no bounds are given.
const DefaultStatisticsWindow = 30 * 24 * time.Hour

// StatisticsHandler handles the HTTP requests for reports.
type StatisticsHandler struct {
	base
	Statistics StatisticsService
}

// NewStatisticsHandler creates a new StatisticsHandler.
func NewStatisticsHandler(stats StatisticsService, logger *slog.Logger) *StatisticsHandler {
	return &StatisticsHandler{base: newBase(logger), Statistics: stats}
}

// SummaryHandler returns the dashboard summary.
func (h *StatisticsHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	from, to, ok := h.timeRange(w, r, DefaultStatisticsWindow)
	if !ok {
		return
	}

	summary, err := h.Statistics.GetSummary(ctx, from, to)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "build summary")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, summary)
}

// DailyRevenueHandler returns usage revenue per day, zero-filled.
func (h *StatisticsHandler) DailyRevenueHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	from, to, ok := h.timeRange(w, r, DefaultStatisticsWindow)
	if !ok {
		return
	}

	days, err := h.Statistics.GetRevenueByDay(ctx, from, to)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "compute daily revenue")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, map[string]any{"from": from, "to": to, "days": days})
}

// HourlyUsageHandler returns the session count per hour of day.
func (h *StatisticsHandler) HourlyUsageHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	from, to, ok := h.timeRange(w, r, DefaultStatisticsWindow)
	if !ok {
		return
	}

	hours, err := h.Statistics.GetUsageByHour(ctx, from, to)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "compute hourly usage")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, map[string]any{"from": from, "to": to, "hours": hours})
}

// TopUsersHandler ranks users by spend. ?limit= defaults to 10.
func (h *StatisticsHandler) TopUsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	from, to, ok := h.timeRange(w, r, DefaultStatisticsWindow)
	if !ok {
		return
	}

	limit := statistics.DefaultTopUsers
	if value := r.URL.Query().Get("limit"); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > MaxPageSize {
			h.ErrorHandler.SendErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100",
				string(errors.ErrorCodeInvalidParameter), nil)
			return
		}
		limit = n
	}

	users, err := h.Statistics.GetTopUsers(ctx, from, to, limit)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "rank users")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateListResponseData("users", users, len(users)))
}

// RevenueSummaryHandler returns revenue totals and averages.
func (h *StatisticsHandler) RevenueSummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	from, to, ok := h.timeRange(w, r, DefaultStatisticsWindow)
	if !ok {
		return
	}

	summary, err := h.Statistics.GetRevenueSummary(ctx, from, to)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "build revenue summary")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, summary)
}
