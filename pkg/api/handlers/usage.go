package handlers

import (
	"net/http"

	"parallax-hq/parallax/pkg/api"
	"parallax-hq/parallax/pkg/telemetry/logging"
	"parallax-hq/parallax/pkg/usage"
)

// Usage handles GET /api/usage: the caller's accumulated token and cost
// totals, one row per (provider, model) pair.
func (h *Handlers) Usage(w http.ResponseWriter, r *http.Request) {
	summaries := []*usage.Summary{}

	if h.usage != nil {
		rows, err := h.usage.Summarize(r.Context(), logging.GetUser(r.Context()))
		if err != nil {
			api.WriteError(w, err)
			return
		}
		summaries = rows
	}
	_ = api.WriteJSON(w, http.StatusOK, map[string]any{"usage": summaries})
}
