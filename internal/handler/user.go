package handler

import (
	"log/slog"
	"net/http"

	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/service"
)

// UserHandler handles the HTTP requests for users.
type UserHandler struct {
	base
	Users    UserService
	Accounts AccountService
	Sessions SessionService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserService, accounts AccountService, sessions SessionService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		base:     newBase(logger),
		Users:    users,
		Accounts: accounts,
		Sessions: sessions,
	}
}

// RegisterUserHandler creates a user together with an empty account.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req registerUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.Users.RegisterUser(ctx, service.RegisterUserRequest{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
		Role:        model.UserRole(req.Role),
	}, actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "register user")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "User registered successfully", user)
}

// ListUsersHandler returns one page of users.
func (h *UserHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	params := h.ResponseHelper.ParsePaginationParams(r)
	page, err := h.Users.ListUsers(ctx, params.Repository())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "list users")
		return
	}

	meta := h.ResponseHelper.CalculatePaginationMeta(params, page.TotalCount)
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreatePaginatedListResponseData("users", page.Items, meta))
}

// GetUserHandler returns a single user.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	user, err := h.Users.GetUser(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "get user")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, user)
}

// UpdateProfileHandler replaces the editable profile fields.
func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
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

	var req updateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.Users.UpdateProfile(ctx, id, service.UpdateProfileRequest{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
		Role:        model.UserRole(req.Role),
	}, actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "update user")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "User updated successfully", user)
}

// ChangeStatusHandler activates or suspends a user.
func (h *UserHandler) ChangeStatusHandler(w http.ResponseWriter, r *http.Request) {
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

	var req userStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.Users.ChangeStatus(ctx, id, model.UserStatus(req.Status), actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "change user status")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "User status updated", user)
}

// ChangePasswordHandler replaces the password after checking the current one.
func (h *UserHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
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

	var req changePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.Users.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword, actor); err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "change password")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Password changed", nil)
}

// GetUserAccountHandler returns the user's account with its latest transactions.
func (h *UserHandler) GetUserAccountHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	account, err := h.Accounts.GetAccountByUserID(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "get account")
		return
	}

	details, err := h.Accounts.GetAccountDetails(ctx, account.ID)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "get account")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, details)
}

// ListUserSessionsHandler returns the user's sessions, newest first.
func (h *UserHandler) ListUserSessionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	sessions, err := h.Sessions.ListSessionsByUser(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "list sessions")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreateListResponseData("sessions", sessions, len(sessions)))
}

// LoginHandler checks credentials and returns the user.
func (h *UserHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.Users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "authenticate")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, user)
}
