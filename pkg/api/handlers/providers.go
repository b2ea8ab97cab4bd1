package handlers

import (
	"net/http"

	"parallax-hq/parallax/pkg/api"
	"parallax-hq/parallax/pkg/providers"
)

// ListProviders handles GET /api/providers: the active provider catalog in
// fan-out order, so clients can render result columns before querying.
func (h *Handlers) ListProviders(w http.ResponseWriter, r *http.Request) {
	adapters := h.engine.Registry().Adapters()

	descriptors := make([]providers.Descriptor, 0, len(adapters))
	for _, adapter := range adapters {
		descriptors = append(descriptors, adapter.Descriptor())
	}
	_ = api.WriteJSON(w, http.StatusOK, map[string]any{"providers": descriptors})
}
