// Package query orchestrates the multi-provider fan-out: one prompt goes
// to every registered provider concurrently, and the settled results come
// back as a uniform set of responses (non-streaming) or as one multiplexed
// event stream (streaming), with exactly one persisted Response row per
// attempted provider.
package query
