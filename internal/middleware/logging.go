package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id of a request. One is generated when the client sends none.
const RequestIDHeader = "X-Request-ID"

const requestIDKey contextKey = "request_id"

// RequestID returns the id assigned by LogRequests, or "" outside that middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// LoggingMiddleware logs one line per request
type LoggingMiddleware struct {
	logger *slog.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger *slog.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingMiddleware{
		logger: logger,
	}
}

// LogRequests tags each request with an id and logs its outcome
func (lm *LoggingMiddleware) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		clientIP := ClientIP(r.Context())
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
			"client_ip", clientIP,
			"user_agent", r.UserAgent(),
		}
		if actor := r.Header.Get("X-Actor-ID"); actor != "" {
			attrs = append(attrs, "actor_id", actor)
		}

		switch {
		case wrapped.statusCode >= http.StatusInternalServerError:
			lm.logger.ErrorContext(r.Context(), "request failed", attrs...)
		case wrapped.statusCode == http.StatusTooManyRequests:
			lm.logger.WarnContext(r.Context(), "rate limit exceeded", attrs...)
		default:
			lm.logger.InfoContext(r.Context(), "request", attrs...)
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
