package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"eventcalendar/internal/delivery/http/helpers"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus is the data of GET /health.
type HealthStatus struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthController reports liveness and database reachability.
type HealthController struct {
	Logger *slog.Logger
	DB     Pinger
	now    func() time.Time
}

func NewHealthController(logger *slog.Logger, db Pinger) *HealthController {
	return &HealthController{Logger: logger, DB: db, now: time.Now}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{Status: "ok", Database: "connected", Timestamp: c.now().UTC()}
	if err := c.DB.Ping(ctx); err != nil {
		c.Logger.WarnContext(r.Context(), "health check failed", "err", err)
		status.Status = "degraded"
		status.Database = "disconnected"
		helpers.WriteJSON(w, http.StatusServiceUnavailable, helpers.APIResponse{
			Success: false,
			Message: helpers.MsgStorageUnavailable,
			Data:    status,
		})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Server is running", status)
}
