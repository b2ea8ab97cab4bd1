package middleware

import (
	"net/http"
	"strings"

	"parallax-hq/parallax/pkg/api"
	"parallax-hq/parallax/pkg/telemetry/logging"
)

// APIKeyInfo describes one configured API key and the identity it maps to.
type APIKeyInfo struct {
	// Key is the secret API key value
	Key string `yaml:"key" json:"-"`

	// UserID is the opaque identity this key authenticates as
	UserID string `yaml:"user_id" json:"user_id"`

	// Enabled allows disabling a key without removing it from config
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// APIKeyValidator validates API keys against the configured set.
type APIKeyValidator struct {
	keys map[string]*APIKeyInfo
}

// NewAPIKeyValidator creates a validator from the configured keys.
func NewAPIKeyValidator(keys []*APIKeyInfo) *APIKeyValidator {
	keyMap := make(map[string]*APIKeyInfo, len(keys))
	for _, key := range keys {
		keyMap[key.Key] = key
	}
	return &APIKeyValidator{keys: keyMap}
}

// Validate resolves an API key to its info. Unknown and disabled keys fail.
func (v *APIKeyValidator) Validate(key string) (*APIKeyInfo, bool) {
	info, ok := v.keys[key]
	if !ok || !info.Enabled {
		return nil, false
	}
	return info, true
}

// Len returns the number of configured keys.
func (v *APIKeyValidator) Len() int {
	return len(v.keys)
}

// Auth authenticates requests by API key from the Authorization header
// (Bearer scheme) or the X-API-Key header, and stores the resolved user
// identity on the context.
//
// With no configured keys the middleware passes every request through
// unauthenticated, so single-user deployments work without auth setup.
// Exempt paths (health probes, metrics scrapes) always pass through.
func Auth(validator *APIKeyValidator, exemptPaths ...string) func(http.Handler) http.Handler {
	exempt := make(map[string]bool, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil || validator.Len() == 0 || exempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := extractAPIKey(r)
			if key == "" {
				_ = api.WriteJSON(w, http.StatusUnauthorized,
					api.NewErrorResponse(api.ErrorTypeUnauthorized, "missing API key"))
				return
			}

			info, ok := validator.Validate(key)
			if !ok {
				_ = api.WriteJSON(w, http.StatusUnauthorized,
					api.NewErrorResponse(api.ErrorTypeUnauthorized, "invalid API key"))
				return
			}

			ctx := logging.WithUser(r.Context(), info.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractAPIKey pulls the API key from the request headers.
func extractAPIKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return r.Header.Get("X-API-Key")
}
