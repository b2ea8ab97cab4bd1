package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"parallax-hq/parallax/pkg/telemetry/logging"
)

func TestRequestIDGenerated(t *testing.T) {
	var ctxID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = logging.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	echoed := rec.Header().Get(RequestIDHeader)
	if echoed == "" {
		t.Fatal("expected generated request id on response")
	}
	if len(echoed) != 32 {
		t.Errorf("expected 32 hex chars, got %q", echoed)
	}
	if ctxID != echoed {
		t.Errorf("context id %q differs from response header %q", ctxID, echoed)
	}
}

func TestRequestIDInboundEchoed(t *testing.T) {
	var ctxID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = logging.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "client-id-123" {
		t.Errorf("expected inbound id echoed, got %q", got)
	}
	if ctxID != "client-id-123" {
		t.Errorf("expected inbound id on context, got %q", ctxID)
	}
}
