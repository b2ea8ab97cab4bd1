package store

import "time"

// Conversation groups queries from a single user into a thread.
type Conversation struct {
	// ID is the conversation's unique identifier (UUID)
	ID string `json:"id"`

	// UserID is the opaque identity of the owning user
	UserID string `json:"userId"`

	// Title is a short human-readable label, derived from the first prompt
	// unless explicitly set
	Title string `json:"title"`

	// CreatedAt is when the conversation was created
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the conversation last received a query
	UpdatedAt time.Time `json:"updatedAt"`
}

// Query is one prompt submitted to the provider fan-out.
type Query struct {
	// ID is the query's unique identifier (UUID)
	ID string `json:"id"`

	// ConversationID is the owning conversation
	ConversationID string `json:"conversationId"`

	// Prompt is the user prompt text
	Prompt string `json:"prompt"`

	// SystemPrompt is the optional system instruction
	SystemPrompt string `json:"systemPrompt,omitempty"`

	// CreatedAt is when the query was submitted
	CreatedAt time.Time `json:"createdAt"`
}

// Response is one provider's settled outcome for a query.
//
// Rows are insert-only: exactly one row exists per attempted provider per
// query, success or failure, and it is never updated afterwards. A failed
// attempt has Error set; a failed stream may additionally keep the content
// that arrived before the failure. DurationMs is always present.
type Response struct {
	// ID is the response's unique identifier (UUID)
	ID string `json:"id"`

	// QueryID is the owning query
	QueryID string `json:"queryId"`

	// Provider is the provider id that produced this response
	Provider string `json:"provider"`

	// Model is the model that served the request
	Model string `json:"model"`

	// Content is the generated text (empty on failure)
	Content string `json:"content"`

	// TokenCount is the total token count, when the provider reported one
	TokenCount *int `json:"tokenCount,omitempty"`

	// DurationMs is the wall-clock duration of the attempt in milliseconds
	DurationMs int64 `json:"durationMs"`

	// Cost is the computed cost in USD, absent when the model has no
	// pricing entry or token counts were unavailable
	Cost *float64 `json:"cost,omitempty"`

	// Error is the failure message (empty on success)
	Error string `json:"error,omitempty"`

	// CreatedAt is when the response settled
	CreatedAt time.Time `json:"createdAt"`
}
