package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"parallax-hq/parallax/pkg/telemetry/logging"
)

// RequestIDHeader is the header carrying the request id, inbound and
// outbound.
const RequestIDHeader = "X-Request-ID"

// RequestID attaches a request id to every request: the inbound header
// value when present, otherwise a fresh random id. The id is stored on the
// context for logging and echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = newRequestID()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := logging.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// newRequestID returns 16 random bytes hex-encoded.
func newRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}
