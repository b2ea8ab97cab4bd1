// Package handlers implements the HTTP endpoints: query fan-out (plain and
// streaming), conversation history, the provider catalog, usage summaries,
// and health checks.
package handlers
