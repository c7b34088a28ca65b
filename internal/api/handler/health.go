package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/daap14/formats/internal/api/middleware"
	"github.com/daap14/formats/internal/api/response"
)

// DBPinger checks that the storage backend is reachable.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	pinger  DBPinger
	driver  string
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pinger DBPinger, driver, version string) *HealthHandler {
	return &HealthHandler{
		pinger:  pinger,
		driver:  driver,
		version: version,
	}
}

type storageStatus struct {
	Driver    string `json:"driver"`
	Connected bool   `json:"connected"`
}

type healthData struct {
	Status  string        `json:"status"`
	Version string        `json:"version"`
	Storage storageStatus `json:"storage"`
}

// ServeHTTP handles the health check request. An unreachable store reports
// "degraded" with a 200.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	connected := true
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			slog.Warn("storage ping failed", "error", err, "driver", h.driver)
			connected = false
		}
	}

	status := "healthy"
	if !connected {
		status = "degraded"
	}

	response.Success(w, http.StatusOK, healthData{
		Status:  status,
		Version: h.version,
		Storage: storageStatus{Driver: h.driver, Connected: connected},
	}, requestID)
}
