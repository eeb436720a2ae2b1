package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultSessionWindow is the range listed by GET /sessions when no bounds are given.
const DefaultSessionWindow = 24 * time.Hour

// SessionHandler handles the HTTP requests for usage sessions.
type SessionHandler struct {
	base
	Sessions SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{base: newBase(logger), Sessions: sessions}
}

// StartSessionHandler seats a user at a computer.
func (h *SessionHandler) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req startSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.Sessions.StartSession(ctx, req.UserID, req.ComputerID, actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "start session")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Session started", session)
}

// ListActiveSessionsHandler lists every running session.
func (h *SessionHandler) ListActiveSessionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	sessions, err := h.Sessions.ListActiveSessions(ctx)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "list active sessions")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateListResponseData("sessions", sessions, len(sessions)))
}

// ListSessionsHandler lists sessions that started inside ?from=&to=.
func (h *SessionHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	from, to, ok := h.timeRange(w, r, DefaultSessionWindow)
	if !ok {
		return
	}

	sessions, err := h.Sessions.ListSessionsByDateRange(ctx, from, to)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "list sessions")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateListResponseData("sessions", sessions, len(sessions)))
}

// GetRemainingTimeHandler reports how long the user's balance lasts on a computer.
func (h *SessionHandler) GetRemainingTimeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	query := r.URL.Query()
	userID, ok := h.ErrorHandler.ParseAndValidateUUID(w, "user_id", query.Get("user_id"))
	if !ok {
		return
	}
	computerID, ok := h.ErrorHandler.ParseAndValidateUUID(w, "computer_id", query.Get("computer_id"))
	if !ok {
		return
	}

	remaining, err := h.Sessions.GetRemainingTime(ctx, userID, computerID)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "get remaining time")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, remaining)
}

// GetSessionHandler returns a session with its ledger entries.
func (h *SessionHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	details, err := h.Sessions.GetSessionDetails(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "get session")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, details)
}

// EndSessionHandler closes a session normally and charges the user.
func (h *SessionHandler) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req endSessionRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}

	session, err := h.Sessions.EndSession(ctx, id, req.Notes, actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "end session")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Session ended", session)
}

// TerminateSessionHandler force-closes a session.
func (h *SessionHandler) TerminateSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req terminateSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.Sessions.TerminateSession(ctx, id, req.Reason, actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "terminate session")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Session terminated", session)
}

// GetSessionCostHandler returns the cost a session has accrued so far.
func (h *SessionHandler) GetSessionCostHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	cost, err := h.Sessions.CalculateSessionCost(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "calculate session cost")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, map[string]any{
		"session_id": id,
		"cost":       cost,
	})
}
