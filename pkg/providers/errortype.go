package providers

import (
	"context"
	"errors"
)

// ErrorType classifies a normalized provider error for metrics labels.
//
// Returned values: "auth", "rate_limit", "timeout", "parse", "stream",
// "server_error", "validation", "config", "canceled", "other".
func ErrorType(err error) string {
	if err == nil {
		return ""
	}

	var authErr *AuthError
	var rateLimitErr *RateLimitError
	var timeoutErr *TimeoutError
	var parseErr *ParseError
	var streamErr *StreamError
	var validationErr *ValidationError
	var configErr *ConfigError
	var providerErr *ProviderError

	switch {
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateLimitErr):
		return "rate_limit"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &streamErr):
		return "stream"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &configErr):
		return "config"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &providerErr):
		if providerErr.StatusCode >= 500 {
			return "server_error"
		}
		return "other"
	default:
		return "other"
	}
}
