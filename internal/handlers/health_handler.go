package handlers

import (
	"net/http"

	"pennyjar/internal/database"
)

// HealthHandler answers liveness probes
type HealthHandler struct {
	db *database.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz reports whether the database answers a trivial query
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	var one int
	if err := h.db.QueryRow("SELECT 1").Scan(&one); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Database unavailable", "Health check failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
