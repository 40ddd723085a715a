package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// SystemHandler provides the health endpoint.
type SystemHandler struct {
	version string
	started time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(version string) *SystemHandler {
	return &SystemHandler{
		version: version,
		started: time.Now(),
	}
}

// Routes registers all system routes on the given chi router.
func (h *SystemHandler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
}

type healthStatus struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// Health reports liveness. Generation has no upstream dependencies, so a
// running process is healthy.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthStatus{
		Status:  "ok",
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Version: h.version,
	})
}
