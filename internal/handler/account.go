package handler

import (
	"log/slog"
	"net/http"

	"internet-cafe-api/internal/service"
)

// AccountHandler handles the HTTP requests for the ledger.
type AccountHandler struct {
	base
	Accounts AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{base: newBase(logger), Accounts: accounts}
}

// GetAccountHandler returns an account with its owner's name and latest transactions.
func (h *AccountHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	details, err := h.Accounts.GetAccountDetails(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "get account")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, details)
}

// DepositHandler credits an account.
func (h *AccountHandler) DepositHandler(w http.ResponseWriter, r *http.Request) {
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

	var req depositRequest
	if !h.decode(w, r, &req) {
		return
	}

	txn, err := h.Accounts.Deposit(ctx, service.DepositRequest{
		AccountID:       id,
		Amount:          req.Amount,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		Description:     req.Description,
	}, actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "deposit")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Deposit recorded", txn)
}

// WithdrawHandler debits an account.
func (h *AccountHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
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

	var req withdrawRequest
	if !h.decode(w, r, &req) {
		return
	}

	txn, err := h.Accounts.Withdraw(ctx, service.WithdrawRequest{
		AccountID: id,
		Amount:    req.Amount,
		Reason:    req.Reason,
	}, actor)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "withdraw")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Withdrawal recorded", txn)
}

// ListTransactionsHandler returns one page of an account's ledger, newest first.
func (h *AccountHandler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	params := h.ResponseHelper.ParsePaginationParams(r)
	page, err := h.Accounts.ListTransactions(ctx, id, params.Repository())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "list transactions")
		return
	}

	meta := h.ResponseHelper.CalculatePaginationMeta(params, page.TotalCount)
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, h.ResponseHelper.CreatePaginatedListResponseData("transactions", page.Items, meta))
}
