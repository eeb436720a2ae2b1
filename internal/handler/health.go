package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// NewHealthHandler reports service health, including database reachability.
func NewHealthHandler(db Pinger, logger *slog.Logger) http.HandlerFunc {
	b := newBase(logger)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		data := map[string]any{
			"timestamp": time.Now().UTC(),
			"service":   "internet-cafe-api",
			"status":    "healthy",
			"database":  "up",
		}

		if err := db.PingContext(ctx); err != nil {
			b.Logger.Warn("health check failed", "error", err)
			data["status"] = "unhealthy"
			data["database"] = "down"
			b.ErrorHandler.SendJSONResponse(w, http.StatusServiceUnavailable, data)
			return
		}

		b.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Service is healthy", data)
	}
}
