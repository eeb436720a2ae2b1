package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"

	"internet-cafe-api/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// SuccessResponse wraps mutations that report a message alongside the data
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorHandler provides centralized error handling functionality for handlers
type ErrorHandler struct {
	Logger *slog.Logger
}

// NewErrorHandler creates a new ErrorHandler instance
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		Logger: logger,
	}
}

// SendErrorResponse sends a structured error response
func (e *ErrorHandler) SendErrorResponse(w http.ResponseWriter, statusCode int, message, code string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		e.Logger.Error("failed to encode error response", "error", err)
	}
}

// SendSuccessResponse sends a structured success response
func (e *ErrorHandler) SendSuccessResponse(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := SuccessResponse{
		Message: message,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		e.Logger.Error("failed to encode success response", "error", err)
	}
}

// SendJSONResponse sends a generic JSON response
func (e *ErrorHandler) SendJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		e.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// HandleServiceError maps a service error to its HTTP status.
// AppErrors keep their code and details; anything else is an internal error.
func (e *ErrorHandler) HandleServiceError(w http.ResponseWriter, err error, operation string) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		if stderrors.Is(err, context.DeadlineExceeded) {
			appErr = errors.TimeoutError(operation)
		} else {
			appErr = errors.InternalError(fmt.Sprintf("failed to %s", operation), err)
		}
	}

	status := appErr.GetHTTPStatus()
	if status >= http.StatusInternalServerError {
		e.Logger.Error("request failed", "operation", operation, "code", appErr.Code, "error", err)
	} else {
		e.Logger.Debug("request rejected", "operation", operation, "code", appErr.Code, "error", err)
	}

	var details map[string]any
	if len(appErr.Details) > 0 {
		details = appErr.Details
	}
	e.SendErrorResponse(w, status, appErr.Message, string(appErr.Code), details)
}

// HandleValidationErrors reports request fields that failed validation
func (e *ErrorHandler) HandleValidationErrors(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		e.SendErrorResponse(w, http.StatusBadRequest, err.Error(), string(errors.ErrorCodeValidation), nil)
		return
	}

	details := make(map[string]any, len(validationErrors))
	for _, fe := range validationErrors {
		details[fe.Field()] = validationMessage(fe)
	}
	e.SendErrorResponse(w, http.StatusBadRequest, "Validation failed", string(errors.ErrorCodeValidation), details)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "ip":
		return "must be a valid IP address"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed on " + fe.Tag()
	}
}

// HandleJSONDecodeError handles JSON decoding errors
func (e *ErrorHandler) HandleJSONDecodeError(w http.ResponseWriter, err error) {
	e.Logger.Debug("JSON decode error", "error", err)
	e.SendErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", string(errors.ErrorCodeInvalidJSON), nil)
}

// ParseAndValidateUUID parses a UUID path or query value, answering 400 when it is malformed
func (e *ErrorHandler) ParseAndValidateUUID(w http.ResponseWriter, name, value string) (uuid.UUID, bool) {
	if value == "" {
		e.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("%s is required", name), string(errors.ErrorCodeMissingParameter), nil)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(value)
	if err != nil {
		e.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name), string(errors.ErrorCodeInvalidParameter), nil)
		return uuid.Nil, false
	}

	return id, true
}
