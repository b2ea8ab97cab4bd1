// Package middleware provides the HTTP middleware chain: panic recovery,
// access logging, request ids, CORS, request timeouts, and API key auth.
package middleware
