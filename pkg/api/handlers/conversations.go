package handlers

import (
	"net/http"

	"parallax-hq/parallax/pkg/api"
	"parallax-hq/parallax/pkg/store"
	"parallax-hq/parallax/pkg/telemetry/logging"
)

// conversationDetail is the composite payload for one conversation: the
// conversation row plus its queries and their responses.
type conversationDetail struct {
	*store.Conversation
	Queries []*queryDetail `json:"queries"`
}

type queryDetail struct {
	*store.Query
	Responses []*store.Response `json:"responses"`
}

// CreateConversation handles POST /api/conversations: an explicitly titled
// empty conversation for queries to attach to later.
func (h *Handlers) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := api.DecodeJSON(w, r, &req); err != nil {
		api.WriteError(w, err)
		return
	}
	if req.Title == "" {
		api.WriteError(w, &api.RequestError{Message: "title is required"})
		return
	}

	conv := &store.Conversation{
		UserID: logging.GetUser(r.Context()),
		Title:  req.Title,
	}
	if err := h.store.CreateConversation(r.Context(), conv); err != nil {
		api.WriteError(w, err)
		return
	}
	_ = api.WriteJSON(w, http.StatusCreated, conv)
}

// ListConversations handles GET /api/conversations: the caller's
// conversations, most recently updated first.
func (h *Handlers) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := logging.GetUser(r.Context())

	conversations, err := h.store.ListConversations(r.Context(), userID)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	_ = api.WriteJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

// GetConversation handles GET /api/conversations/{id}: the conversation
// with its full query and response history.
func (h *Handlers) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	conv, err := h.conversationForCaller(r, id)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	queries, err := h.store.ListQueries(r.Context(), id)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	detail := &conversationDetail{
		Conversation: conv,
		Queries:      make([]*queryDetail, 0, len(queries)),
	}
	for _, q := range queries {
		responses, err := h.store.ListResponses(r.Context(), q.ID)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		detail.Queries = append(detail.Queries, &queryDetail{Query: q, Responses: responses})
	}

	_ = api.WriteJSON(w, http.StatusOK, detail)
}

// DeleteConversation handles DELETE /api/conversations/{id}.
func (h *Handlers) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := h.conversationForCaller(r, id); err != nil {
		api.WriteError(w, err)
		return
	}
	if err := h.store.DeleteConversation(r.Context(), id); err != nil {
		api.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// conversationForCaller loads a conversation and hides other users'
// conversations behind a not-found error.
func (h *Handlers) conversationForCaller(r *http.Request, id string) (*store.Conversation, error) {
	conv, err := h.store.GetConversation(r.Context(), id)
	if err != nil {
		return nil, err
	}

	userID := logging.GetUser(r.Context())
	if userID != "" && conv.UserID != "" && conv.UserID != userID {
		return nil, &store.NotFoundError{Kind: "conversation", ID: id}
	}
	return conv, nil
}
