package handlers

import (
	"net/http"

	"parallax-hq/parallax/pkg/api"
	"parallax-hq/parallax/pkg/query"
	"parallax-hq/parallax/pkg/telemetry/logging"
)

// QueryStream handles POST /api/query/stream: the provider fan-out as one
// server-sent-events stream of start/chunk/complete/error/end records.
//
// Validation failures are reported as a plain JSON error before any event
// is written. Once the stream has started, per-provider failures arrive as
// error events and the response stays 200.
func (h *Handlers) QueryStream(w http.ResponseWriter, r *http.Request) {
	var req query.Request
	if err := api.DecodeJSON(w, r, &req); err != nil {
		api.WriteError(w, err)
		return
	}
	req.UserID = logging.GetUser(r.Context())

	events, err := h.engine.Stream(r.Context(), &req)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	api.SetSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	for event := range events {
		if writeErr := api.WriteSSEEvent(w, event); writeErr != nil {
			h.logger.DebugContext(r.Context(), "stream client write failed",
				"error", writeErr)
			// Drain so the aggregator can finish persisting terminal rows.
			for range events {
			}
			return
		}
	}
}
