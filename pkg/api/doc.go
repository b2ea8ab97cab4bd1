// Package api holds shared HTTP plumbing for the REST and SSE endpoints:
// request decoding, JSON and event-stream response writers, and the
// error-to-status mapping.
package api
