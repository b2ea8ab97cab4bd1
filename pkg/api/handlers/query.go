package handlers

import (
	"net/http"

	"parallax-hq/parallax/pkg/api"
	"parallax-hq/parallax/pkg/query"
	"parallax-hq/parallax/pkg/telemetry/logging"
)

// Query handles POST /api/query: one prompt fanned out to all providers,
// returning every provider's settled response in one payload.
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	var req query.Request
	if err := api.DecodeJSON(w, r, &req); err != nil {
		api.WriteError(w, err)
		return
	}
	req.UserID = logging.GetUser(r.Context())

	result, err := h.engine.Query(r.Context(), &req)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	_ = api.WriteJSON(w, http.StatusOK, result)
}
