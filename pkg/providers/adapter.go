package providers

import "context"

// Adapter is the interface all provider adapters implement.
//
// Adapters never fault: Generate returns a settled GenerateResult with
// either Content or Error populated, and GenerateStream returns a channel
// that always yields exactly one terminal chunk (Done=true) before closing,
// carrying the error if the stream failed. Callers can therefore fan out
// to many adapters without wrapping each call in its own error handling.
type Adapter interface {
	// ID returns the provider identifier (e.g., "openai")
	ID() string

	// Descriptor returns the catalog descriptor for this provider
	Descriptor() Descriptor

	// Generate sends a single completion request and blocks until it settles.
	// The returned result is never nil.
	Generate(ctx context.Context, req *GenerateRequest) *GenerateResult

	// GenerateStream sends a streaming completion request. The returned
	// channel is closed after the terminal chunk. Cancelling ctx terminates
	// the stream; the terminal chunk then carries the cancellation error.
	GenerateStream(ctx context.Context, req *GenerateRequest) <-chan *StreamChunk

	// Close releases the adapter's resources (connection pools, etc.)
	Close() error
}
