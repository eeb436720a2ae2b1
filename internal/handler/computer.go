package handler

import (
	"log/slog"
	"net/http"

	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/service"
)

// ComputerHandler handles the HTTP requests for computers.
type ComputerHandler struct {
	base
	Computers ComputerService
	Sessions  SessionService
}

// NewComputerHandler creates a new ComputerHandler.
func NewComputerHandler(computers ComputerService, sessions SessionService, logger *slog.Logger) *ComputerHandler {
	return &ComputerHandler{base: newBase(logger), Computers: computers, Sessions: sessions}
}

func (req computerRequest) toService() service.ComputerRequest {
	return service.ComputerRequest{
		Name:           req.Name,
		IPAddress:      req.IPAddress,
		Specifications: req.Specifications,
		Location:       req.Location,
		HourlyRate:     req.HourlyRate,
	}
}

// CreateComputerHandler registers a new computer as available.
func (h *ComputerHandler) CreateComputerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req computerRequest
	if !h.decode(w, r, &req) {
		return
	}

	computer, err := h.Computers.RegisterComputer(ctx, req.toService(), actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "register computer")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Computer created successfully", computer)
}

// GetAllComputersHandler lists computers. With ?status= it returns every computer in that status,
// otherwise one page of all computers.
func (h *ComputerHandler) GetAllComputersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	if status := r.URL.Query().Get("status"); status != "" {
		computers, err := h.Computers.ListComputersByStatus(ctx, model.UsageStatus(status))
		if err != nil {
			h.ErrorHandler.HandleServiceError(w, err, "list computers")
			return
		}
		h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateListResponseData("computers", computers, len(computers)))
		return
	}

	params := h.ResponseHelper.ParsePaginationParams(r)
	page, err := h.Computers.ListComputers(ctx, params.Repository())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "list computers")
		return
	}

	meta := h.ResponseHelper.CalculatePaginationMeta(params, page.TotalCount)
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreatePaginatedListResponseData("computers", page.Items, meta))
}

// GetAvailableComputersHandler lists the computers a session can start on.
func (h *ComputerHandler) GetAvailableComputersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	computers, err := h.Computers.ListAvailableComputers(ctx)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "list available computers")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateListResponseData("computers", computers, len(computers)))
}

// GetComputerHandler handles the retrieval of a single computer by ID.
func (h *ComputerHandler) GetComputerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	computer, err := h.Computers.GetComputer(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "get computer")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, computer)
}

// UpdateComputerHandler replaces the descriptive fields and rate of a computer.
func (h *ComputerHandler) UpdateComputerHandler(w http.ResponseWriter, r *http.Request) {
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

	var req computerRequest
	if !h.decode(w, r, &req) {
		return
	}

	computer, err := h.Computers.UpdateComputer(ctx, id, req.toService(), actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "update computer")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Computer updated successfully", computer)
}

// DeleteComputerHandler removes a computer that has no active session.
func (h *ComputerHandler) DeleteComputerHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Computers.RemoveComputer(ctx, id, actor); err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "remove computer")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Computer deleted successfully", map[string]any{"id": id})
}

// SetStatusHandler moves a computer through its status state machine.
func (h *ComputerHandler) SetStatusHandler(w http.ResponseWriter, r *http.Request) {
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

	var req computerStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	computer, err := h.Computers.SetStatus(ctx, id, model.UsageStatus(req.Status), actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "set computer status")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Computer status updated", computer)
}

// SetMaintenanceHandler takes an available computer out of service.
func (h *ComputerHandler) SetMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
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

	var req maintenanceRequest
	if !h.decode(w, r, &req) {
		return
	}

	computer, err := h.Computers.SetMaintenance(ctx, id, req.Reason, actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "set maintenance")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Computer is in maintenance", computer)
}

// GetComputerSessionHandler returns the active session on a computer.
func (h *ComputerHandler) GetComputerSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	session, err := h.Sessions.GetActiveSessionByComputer(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "get active session")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, session)
}
