// Package logging configures structured logging on log/slog, with
// request-scoped fields (request id, user) injected from context.
package logging
