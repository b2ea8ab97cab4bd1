// Package anthropic implements the provider adapter for Anthropic's
// Messages API, including its typed SSE event stream.
package anthropic
