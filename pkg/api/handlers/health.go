package handlers

import (
	"net/http"

	"parallax-hq/parallax/pkg/api"
	"parallax-hq/parallax/pkg/telemetry/logging"
)

// Health handles GET /health: process liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	_ = api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready: readiness to serve queries, verified with a
// cheap store round-trip.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.ListConversations(r.Context(), logging.GetUser(r.Context())); err != nil {
		_ = api.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	_ = api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
