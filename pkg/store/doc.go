// Package store persists conversations, queries, and provider responses.
//
// The SQLite backend is the production store; the memory backend serves
// tests and ephemeral runs. Response rows are insert-only and written
// concurrently by provider goroutines during fan-out.
package store
