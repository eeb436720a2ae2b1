package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"internet-cafe-api/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ResponseHelper provides common request parsing and response shaping
type ResponseHelper struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewResponseHelper creates a new ResponseHelper instance
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{
		validate: newValidator(),
		now:      time.Now,
	}
}

// ActorHeader carries the id of the staff member or user performing a mutation.
const ActorHeader = "X-Actor-ID"

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Offset   int `json:"offset"`
	Limit    int `json:"limit"`
}

// PaginationMeta holds pagination metadata for responses
type PaginationMeta struct {
	Page         int  `json:"page"`
	PageSize     int  `json:"page_size"`
	TotalItems   int  `json:"total_items"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
	NextPage     *int `json:"next_page,omitempty"`
	PreviousPage *int `json:"previous_page,omitempty"`
}

// Default pagination constants
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MinPageSize     = 1
)

// ParsePaginationParams reads page and page_size, falling back to defaults on bad input
func (rh *ResponseHelper) ParsePaginationParams(r *http.Request) PaginationParams {
	query := r.URL.Query()

	page := 1
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	pageSize := DefaultPageSize
	if pageSizeStr := query.Get("page_size"); pageSizeStr != "" {
		if ps, err := strconv.Atoi(pageSizeStr); err == nil {
			if ps >= MinPageSize && ps <= MaxPageSize {
				pageSize = ps
			}
		}
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}
}

// Repository converts the parsed parameters for the data layer
func (p PaginationParams) Repository() repository.PaginationParams {
	return repository.PaginationParams{Offset: p.Offset, Limit: p.Limit}
}

// CalculatePaginationMeta calculates pagination metadata
func (rh *ResponseHelper) CalculatePaginationMeta(params PaginationParams, totalItems int) PaginationMeta {
	totalPages := (totalItems + params.PageSize - 1) / params.PageSize // Ceiling division
	if totalPages == 0 {
		totalPages = 1
	}

	hasNext := params.Page < totalPages
	hasPrevious := params.Page > 1

	var nextPage, previousPage *int
	if hasNext {
		next := params.Page + 1
		nextPage = &next
	}
	if hasPrevious {
		prev := params.Page - 1
		previousPage = &prev
	}

	return PaginationMeta{
		Page:         params.Page,
		PageSize:     params.PageSize,
		TotalItems:   totalItems,
		TotalPages:   totalPages,
		HasNext:      hasNext,
		HasPrevious:  hasPrevious,
		NextPage:     nextPage,
		PreviousPage: previousPage,
	}
}

// CreateRequestContext bounds the request context, which keeps the request id set by the logging middleware
func (rh *ResponseHelper) CreateRequestContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}

// Actor returns the X-Actor-ID header as a UUID. A missing header is the system actor (uuid.Nil).
func (rh *ResponseHelper) Actor(r *http.Request) (uuid.UUID, error) {
	value := r.Header.Get(ActorHeader)
	if value == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s header: %w", ActorHeader, err)
	}
	return id, nil
}

// DecodeAndValidate decodes a JSON body into dst and runs its validate tags.
func (rh *ResponseHelper) DecodeAndValidate(r *http.Request, dst any) (decodeErr, validateErr error) {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err, nil
	}
	return nil, rh.validate.Struct(dst)
}

// ParseTimeRange reads the from and to query parameters (RFC 3339 or YYYY-MM-DD).
// Missing bounds default to [to-window, now]. A date-only "to" covers that whole day.
func (rh *ResponseHelper) ParseTimeRange(r *http.Request, window time.Duration) (from, to time.Time, err error) {
	query := r.URL.Query()

	to = rh.now().UTC()
	if value := query.Get("to"); value != "" {
		parsed, dateOnly, err := parseTime(value)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to: %w", err)
		}
		to = parsed
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
	}

	from = to.Add(-window)
	if value := query.Get("from"); value != "" {
		parsed, _, err := parseTime(value)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from: %w", err)
		}
		from = parsed
	}

	return from, to, nil
}

func parseTime(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", value)
	}
	return t, true, nil
}

// CreatePaginatedListResponseData creates response data for paginated list operations
func (rh *ResponseHelper) CreatePaginatedListResponseData(key string, items any, pagination PaginationMeta) map[string]any {
	return map[string]any{
		key:          items,
		"pagination": pagination,
	}
}

// CreateListResponseData creates response data for list operations with a count
func (rh *ResponseHelper) CreateListResponseData(key string, items any, count int) map[string]any {
	return map[string]any{
		key:     items,
		"count": count,
	}
}
