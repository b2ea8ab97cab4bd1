package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"parallax-hq/parallax/internal/providertest"
	"parallax-hq/parallax/pkg/pricing"
	"parallax-hq/parallax/pkg/providers"
	"parallax-hq/parallax/pkg/query"
	"parallax-hq/parallax/pkg/store"
	"parallax-hq/parallax/pkg/telemetry/logging"
	"parallax-hq/parallax/pkg/usage"
)

func newTestHandlers(t *testing.T, adapters ...providers.Adapter) (*Handlers, *store.MemoryStore) {
	t.Helper()

	registry := providers.NewRegistry()
	for _, a := range adapters {
		if err := registry.Register(a); err != nil {
			t.Fatalf("register %q: %v", a.ID(), err)
		}
	}

	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := query.NewEngine(registry, st, pricing.NewTable(nil), usage.NewMemoryTracker(), nil, logger)
	return New(engine, st, usage.NewMemoryTracker(), logger), st
}

// testMux mirrors the server's route patterns so path values resolve.
func testMux(h *Handlers) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", h.Query)
	mux.HandleFunc("POST /api/query/stream", h.QueryStream)
	mux.HandleFunc("POST /api/conversations", h.CreateConversation)
	mux.HandleFunc("GET /api/conversations", h.ListConversations)
	mux.HandleFunc("GET /api/conversations/{id}", h.GetConversation)
	mux.HandleFunc("DELETE /api/conversations/{id}", h.DeleteConversation)
	mux.HandleFunc("GET /api/providers", h.ListProviders)
	mux.HandleFunc("GET /api/usage", h.Usage)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any, user string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req = req.WithContext(logging.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestQueryEndpoint(t *testing.T) {
	h, _ := newTestHandlers(t,
		providertest.NewFakeAdapter("alpha", "answer a"),
		providertest.NewFakeAdapter("bravo", "answer b"),
	)
	mux := testMux(h)

	rec := doJSON(t, mux, http.MethodPost, "/api/query", map[string]any{"prompt": "hi"}, "alice")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		QueryID        string `json:"queryId"`
		ConversationID string `json:"conversationId"`
		Responses      []struct {
			Provider string `json:"provider"`
			Content  string `json:"content"`
		} `json:"responses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("response body: %v", err)
	}
	if result.QueryID == "" || result.ConversationID == "" {
		t.Error("expected identity fields in response")
	}
	if len(result.Responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(result.Responses))
	}
	if result.Responses[0].Provider != "alpha" || result.Responses[0].Content != "answer a" {
		t.Errorf("unexpected first response %+v", result.Responses[0])
	}
}

func TestQueryEndpointValidation(t *testing.T) {
	h, _ := newTestHandlers(t, providertest.NewFakeAdapter("alpha", "hi"))
	mux := testMux(h)

	rec := doJSON(t, mux, http.MethodPost, "/api/query", map[string]any{}, "alice")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Error.Type != "invalid_request" {
		t.Errorf("expected invalid_request, got %q", envelope.Error.Type)
	}
}

func TestQueryEndpointMalformedBody(t *testing.T) {
	h, _ := newTestHandlers(t, providertest.NewFakeAdapter("alpha", "hi"))
	mux := testMux(h)

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestStreamEndpoint(t *testing.T) {
	a := providertest.NewFakeAdapter("alpha", "")
	a.Chunks = []string{"Hel", "lo"}
	a.StreamUsage = &providers.TokenUsage{InputTokens: 2, OutputTokens: 3, TotalTokens: 5}

	h, _ := newTestHandlers(t, a)
	mux := testMux(h)

	rec := doJSON(t, mux, http.MethodPost, "/api/query/stream", map[string]any{"prompt": "hi"}, "alice")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected SSE content type, got %q", ct)
	}

	var types []string
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("bad event record %q: %v", line, err)
		}
		types = append(types, ev.Type)
	}

	if len(types) < 3 {
		t.Fatalf("expected at least start/terminal/end, got %v", types)
	}
	if types[0] != "start" {
		t.Errorf("expected start first, got %q", types[0])
	}
	if types[len(types)-1] != "end" {
		t.Errorf("expected end last, got %q", types[len(types)-1])
	}
}

func TestStreamEndpointValidation(t *testing.T) {
	h, _ := newTestHandlers(t, providertest.NewFakeAdapter("alpha", "hi"))
	mux := testMux(h)

	rec := doJSON(t, mux, http.MethodPost, "/api/query/stream", map[string]any{}, "alice")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected plain 400 before any event, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct == "text/event-stream" {
		t.Error("validation failure must not start an event stream")
	}
}

func TestConversationEndpoints(t *testing.T) {
	h, _ := newTestHandlers(t, providertest.NewFakeAdapter("alpha", "hi"))
	mux := testMux(h)

	created := doJSON(t, mux, http.MethodPost, "/api/query", map[string]any{"prompt": "first question"}, "alice")
	if created.Code != http.StatusOK {
		t.Fatalf("query failed: %d", created.Code)
	}
	var result struct {
		ConversationID string `json:"conversationId"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}

	// List includes the new conversation.
	list := doJSON(t, mux, http.MethodGet, "/api/conversations", nil, "alice")
	if list.Code != http.StatusOK {
		t.Fatalf("list failed: %d", list.Code)
	}
	var listBody struct {
		Conversations []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"conversations"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &listBody); err != nil {
		t.Fatal(err)
	}
	if len(listBody.Conversations) != 1 || listBody.Conversations[0].ID != result.ConversationID {
		t.Errorf("unexpected conversation list %+v", listBody.Conversations)
	}
	if listBody.Conversations[0].Title != "first question" {
		t.Errorf("unexpected title %q", listBody.Conversations[0].Title)
	}

	// Detail carries the query and response history.
	detail := doJSON(t, mux, http.MethodGet, "/api/conversations/"+result.ConversationID, nil, "alice")
	if detail.Code != http.StatusOK {
		t.Fatalf("detail failed: %d", detail.Code)
	}
	var detailBody struct {
		ID      string `json:"id"`
		Queries []struct {
			Prompt    string `json:"prompt"`
			Responses []struct {
				Provider string `json:"provider"`
				Content  string `json:"content"`
			} `json:"responses"`
		} `json:"queries"`
	}
	if err := json.Unmarshal(detail.Body.Bytes(), &detailBody); err != nil {
		t.Fatal(err)
	}
	if len(detailBody.Queries) != 1 || detailBody.Queries[0].Prompt != "first question" {
		t.Errorf("unexpected queries %+v", detailBody.Queries)
	}
	if len(detailBody.Queries[0].Responses) != 1 || detailBody.Queries[0].Responses[0].Content != "hi" {
		t.Errorf("unexpected responses %+v", detailBody.Queries[0].Responses)
	}

	// Delete, then the conversation is gone.
	del := doJSON(t, mux, http.MethodDelete, "/api/conversations/"+result.ConversationID, nil, "alice")
	if del.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", del.Code)
	}
	gone := doJSON(t, mux, http.MethodGet, "/api/conversations/"+result.ConversationID, nil, "alice")
	if gone.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", gone.Code)
	}
}

func TestCreateConversationEndpoint(t *testing.T) {
	h, _ := newTestHandlers(t, providertest.NewFakeAdapter("alpha", "hi"))
	mux := testMux(h)

	rec := doJSON(t, mux, http.MethodPost, "/api/conversations", map[string]any{"title": "Planning"}, "alice")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var conv struct {
		ID     string `json:"id"`
		UserID string `json:"userId"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &conv); err != nil {
		t.Fatal(err)
	}
	if conv.ID == "" || conv.Title != "Planning" || conv.UserID != "alice" {
		t.Errorf("unexpected conversation %+v", conv)
	}

	// A query can attach to the pre-created conversation.
	q := doJSON(t, mux, http.MethodPost, "/api/query", map[string]any{
		"prompt":         "hi",
		"conversationId": conv.ID,
	}, "alice")
	if q.Code != http.StatusOK {
		t.Fatalf("query against created conversation failed: %d", q.Code)
	}

	missing := doJSON(t, mux, http.MethodPost, "/api/conversations", map[string]any{}, "alice")
	if missing.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing title, got %d", missing.Code)
	}
}

func TestConversationOwnershipHiddenAsNotFound(t *testing.T) {
	h, st := newTestHandlers(t, providertest.NewFakeAdapter("alpha", "hi"))
	mux := testMux(h)

	conv := &store.Conversation{UserID: "bob", Title: "bob's chat"}
	if err := st.CreateConversation(context.Background(), conv); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, mux, http.MethodGet, "/api/conversations/"+conv.ID, nil, "alice")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's conversation, got %d", rec.Code)
	}

	del := doJSON(t, mux, http.MethodDelete, "/api/conversations/"+conv.ID, nil, "alice")
	if del.Code != http.StatusNotFound {
		t.Errorf("expected 404 on cross-user delete, got %d", del.Code)
	}
	if _, err := st.GetConversation(context.Background(), conv.ID); err != nil {
		t.Error("cross-user delete must not remove the conversation")
	}
}

func TestProvidersEndpoint(t *testing.T) {
	h, _ := newTestHandlers(t,
		providertest.NewFakeAdapter("alpha", "hi"),
		providertest.NewFakeAdapter("bravo", "hi"),
	)
	mux := testMux(h)

	rec := doJSON(t, mux, http.MethodGet, "/api/providers", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Providers []struct {
			ID           string   `json:"id"`
			Models       []string `json:"models"`
			DefaultModel string   `json:"defaultModel"`
		} `json:"providers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(body.Providers))
	}
	if body.Providers[0].ID != "alpha" || body.Providers[1].ID != "bravo" {
		t.Errorf("expected registration order, got %+v", body.Providers)
	}
	if body.Providers[0].DefaultModel == "" {
		t.Error("expected default model in descriptor")
	}
}

func TestUsageEndpointEmptyWithoutTracker(t *testing.T) {
	registry := providers.NewRegistry()
	_ = registry.Register(providertest.NewFakeAdapter("alpha", "hi"))
	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := query.NewEngine(registry, st, pricing.NewTable(nil), nil, nil, logger)
	h := New(engine, st, nil, logger)
	mux := testMux(h)

	rec := doJSON(t, mux, http.MethodGet, "/api/usage", nil, "alice")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"usage":[]}` {
		t.Errorf("expected empty usage array, got %s", body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := newTestHandlers(t, providertest.NewFakeAdapter("alpha", "hi"))
	mux := testMux(h)

	health := doJSON(t, mux, http.MethodGet, "/health", nil, "")
	if health.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", health.Code)
	}
	ready := doJSON(t, mux, http.MethodGet, "/ready", nil, "")
	if ready.Code != http.StatusOK {
		t.Errorf("ready: expected 200, got %d", ready.Code)
	}
}
