package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/templatehub/backend/internal/logging"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler responds with service health information. When Database is
// set it must answer a ping for the service to report healthy.
type HealthHandler struct {
	Database Pinger
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Database != nil {
		pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()
		if err := h.Database.Ping(pingCtx); err != nil {
			logging.FromContext(ctx).Error("database health check failed", "error", err)
			respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
