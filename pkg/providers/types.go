package providers

import "time"

// GenerateRequest represents a provider-agnostic generation request.
// It is transformed to provider-specific wire formats by each adapter.
type GenerateRequest struct {
	// Prompt is the user prompt to send to the model
	Prompt string `json:"prompt"`

	// SystemPrompt is an optional system instruction
	SystemPrompt string `json:"systemPrompt,omitempty"`

	// Model is the model identifier (e.g., "gpt-4o", "claude-3-5-sonnet-20241022").
	// If empty, the adapter uses its provider's default model.
	Model string `json:"model,omitempty"`

	// Temperature controls randomness (0.0 to 2.0). Zero means provider default.
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate. Zero means provider default.
	MaxTokens int `json:"maxTokens,omitempty"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	// InputTokens is the number of tokens in the prompt
	InputTokens int `json:"inputTokens"`

	// OutputTokens is the number of tokens in the completion
	OutputTokens int `json:"outputTokens"`

	// TotalTokens is the total number of tokens used (input + output)
	TotalTokens int `json:"totalTokens"`
}

// GenerateResult represents a settled generation outcome.
//
// Exactly one of Content or Error carries the outcome: a failed attempt has
// Error set and empty Content, a successful one has Content and a nil Error.
// Duration is always set, success or failure.
type GenerateResult struct {
	// Provider is the id of the provider that produced this result
	Provider string `json:"provider"`

	// Model is the model that generated the response
	Model string `json:"model"`

	// Content is the generated text (empty on failure)
	Content string `json:"content"`

	// Usage contains token consumption, when the provider reported it
	Usage *TokenUsage `json:"usage,omitempty"`

	// Duration is the wall-clock time of the attempt
	Duration time.Duration `json:"-"`

	// Error is the normalized failure (nil on success)
	Error error `json:"-"`
}

// StreamChunk represents a single chunk in a streaming response.
//
// A stream is a finite sequence of zero or more content chunks followed by
// exactly one terminal chunk with Done set. The terminal chunk carries final
// Usage when the provider reported it, and Error when the stream failed, so
// upstream error detail is never dropped on the floor.
type StreamChunk struct {
	// Content is the incremental text in this chunk
	Content string `json:"content"`

	// Done marks the terminal chunk of the stream
	Done bool `json:"done"`

	// Usage is set on the terminal chunk if the provider reports token counts
	Usage *TokenUsage `json:"usage,omitempty"`

	// Error is set on the terminal chunk if the stream failed
	Error error `json:"-"`
}

// Descriptor describes a catalog provider: its id, display name, and the
// models it serves.
type Descriptor struct {
	// ID is the provider identifier (e.g., "openai", "anthropic")
	ID string `json:"id"`

	// Name is the human-readable provider name
	Name string `json:"name"`

	// Models is the list of supported model identifiers
	Models []string `json:"models"`

	// DefaultModel is used when a request does not name a model
	DefaultModel string `json:"defaultModel"`
}

// ResolveModel returns the model to use for a request. An empty requested
// model falls back to the provider default; anything else passes through
// unchanged and is validated by the provider itself.
func (d Descriptor) ResolveModel(requested string) string {
	if requested == "" {
		return d.DefaultModel
	}
	return requested
}

// AdapterConfig contains configuration for a single adapter instance.
// This is a subset of config.ProviderConfig with only the fields adapters need.
type AdapterConfig struct {
	// ID is the provider identifier (e.g., "openai", "anthropic")
	ID string

	// BaseURL is the API endpoint base URL
	BaseURL string

	// APIKey is the authentication key
	APIKey string

	// CompletionsPath overrides the completions endpoint path for
	// OpenAI-compatible providers (e.g., Perplexity serves
	// "/chat/completions" without the "/v1" prefix).
	CompletionsPath string

	// Timeout is the request timeout duration
	Timeout time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// StreamBufferSize is the capacity of adapter stream channels. A full buffer
// applies backpressure to the upstream read loop.
const StreamBufferSize = 100
