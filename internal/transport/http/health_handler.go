package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler serves liveness and version endpoints.
type HealthHandler struct {
	version   string
	startedAt time.Time
	storeLen  func() int
	logger    *slog.Logger
}

// NewHealthHandler creates the health handler. storeLen reports the
// number of analyses currently held in the store.
func NewHealthHandler(version string, storeLen func() int, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		version:   version,
		startedAt: time.Now(),
		storeLen:  storeLen,
		logger:    logger,
	}
}

// RegisterRoutes registers health routes on the router.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/version", h.Version)
}

// Health reports process liveness and store occupancy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":          "healthy",
		"uptime":          time.Since(h.startedAt).Round(time.Second).String(),
		"stored_analyses": h.storeLen(),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

// Version reports the build version.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"version": h.version,
	})
}
