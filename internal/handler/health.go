package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/inventory/internal/service"
)

// HealthHandler reports whether the item store answers queries.
type HealthHandler struct {
	inventory *service.InventoryService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(inventory *service.InventoryService) *HealthHandler {
	return &HealthHandler{inventory: inventory}
}

// HandleHealthz responds with 200 and {"status":"ok"} when the store is
// reachable, and 503 otherwise.
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := h.inventory.Summary(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
