package usage

import "context"

// Record is one accounting entry, applied after a provider response settles.
type Record struct {
	// UserID is the opaque identity the query was billed to
	UserID string

	// Provider is the provider id
	Provider string

	// Model is the model that served the request
	Model string

	// InputTokens is the prompt token count (0 when unreported)
	InputTokens int

	// OutputTokens is the completion token count (0 when unreported)
	OutputTokens int

	// Cost is the computed cost in USD (0 when pricing was unavailable)
	Cost float64
}

// Summary is the accumulated usage for one (user, provider, model) key.
type Summary struct {
	// UserID is the opaque user identity
	UserID string `json:"userId"`

	// Provider is the provider id
	Provider string `json:"provider"`

	// Model is the model id
	Model string `json:"model"`

	// Requests is the number of settled responses recorded
	Requests int64 `json:"requests"`

	// InputTokens is the accumulated prompt token count
	InputTokens int64 `json:"inputTokens"`

	// OutputTokens is the accumulated completion token count
	OutputTokens int64 `json:"outputTokens"`

	// Cost is the accumulated cost in USD
	Cost float64 `json:"cost"`
}

// Tracker accumulates per-user usage totals.
//
// Recording is best-effort by contract: callers log tracker failures but
// never fail a query because accounting did.
type Tracker interface {
	// Record applies one accounting entry.
	Record(ctx context.Context, rec *Record) error

	// Summarize returns a user's accumulated usage, one row per
	// (provider, model) pair.
	Summarize(ctx context.Context, userID string) ([]*Summary, error)

	// Close releases the tracker's resources.
	Close() error
}
