package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is a dependency the health check pings
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoint
type HealthHandler struct {
	store  Pinger
	driver string
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler. store may be nil when carts
// are not persisted.
func NewHealthHandler(store Pinger, driver string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		driver: driver,
		logger: logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Store     string    `json:"store"`
	StoreOK   bool      `json:"store_ok"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Store:     h.driver,
		StoreOK:   true,
	}
	status := http.StatusOK

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("cart store ping failed", "driver", h.driver, "error", err)
			response.Status = "degraded"
			response.StoreOK = false
			status = http.StatusServiceUnavailable
		}
	}

	WriteJSON(w, status, response, h.logger)
}
