package handler

import (
	"log/slog"
	"net/http"
	"time"

	"internet-cafe-api/pkg/errors"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Constants for request timeouts
const (
	DefaultTimeout     = 10 * time.Second
	LongRunningTimeout = 15 * time.Second
)

// base carries the helpers shared by every handler.
type base struct {
	Logger         *slog.Logger
	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

func newBase(logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

func (b *base) actor(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	actor, err := b.ResponseHelper.Actor(r)
	if err != nil {
		b.ErrorHandler.SendErrorResponse(w, http.StatusBadRequest, err.Error(), string(errors.ErrorCodeInvalidParameter), nil)
		return uuid.Nil, false
	}
	return actor, true
}

func (b *base) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return b.ErrorHandler.ParseAndValidateUUID(w, "id", mux.Vars(r)["id"])
}

func (b *base) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	decodeErr, validateErr := b.ResponseHelper.DecodeAndValidate(r, dst)
	if decodeErr != nil {
		b.ErrorHandler.HandleJSONDecodeError(w, decodeErr)
		return false
	}
	if validateErr != nil {
		b.ErrorHandler.HandleValidationErrors(w, validateErr)
		return false
	}
	return true
}

func (b *base) timeRange(w http.ResponseWriter, r *http.Request, window time.Duration) (time.Time, time.Time, bool) {
	from, to, err := b.ResponseHelper.ParseTimeRange(r, window)
	if err != nil {
		b.ErrorHandler.SendErrorResponse(w, http.StatusBadRequest, err.Error(), string(errors.ErrorCodeInvalidParameter), nil)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
