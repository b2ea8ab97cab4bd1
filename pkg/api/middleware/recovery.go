package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"parallax-hq/parallax/pkg/api"
)

// Recovery converts handler panics into 500 responses instead of killing
// the connection. It sits outermost in the chain so a panic anywhere below
// is still logged with a stack trace.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "handler panic",
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()))
					_ = api.WriteJSON(w, http.StatusInternalServerError,
						api.NewErrorResponse(api.ErrorTypeInternal, "an internal error occurred"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
