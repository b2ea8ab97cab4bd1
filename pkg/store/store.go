package store

import (
	"context"
	"time"
)

// Store persists conversations, queries, and responses.
//
// Implementations must support concurrent independent writes: during a
// fan-out, every provider goroutine persists its own Response row without
// coordination. Response rows are insert-only.
type Store interface {
	// CreateConversation inserts a new conversation. A missing ID is
	// assigned a fresh UUID.
	CreateConversation(ctx context.Context, c *Conversation) error

	// GetConversation returns a conversation by id, or NotFoundError.
	GetConversation(ctx context.Context, id string) (*Conversation, error)

	// ListConversations returns a user's conversations, most recently
	// updated first.
	ListConversations(ctx context.Context, userID string) ([]*Conversation, error)

	// TouchConversation bumps a conversation's updated_at timestamp.
	TouchConversation(ctx context.Context, id string, at time.Time) error

	// DeleteConversation removes a conversation and its queries and
	// responses.
	DeleteConversation(ctx context.Context, id string) error

	// DeleteConversationsBefore removes conversations last updated before
	// the cutoff, cascading to their queries and responses. Returns the
	// number of conversations removed.
	DeleteConversationsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CreateQuery inserts a new query. A missing ID is assigned a fresh UUID.
	CreateQuery(ctx context.Context, q *Query) error

	// ListQueries returns a conversation's queries in submission order.
	ListQueries(ctx context.Context, conversationID string) ([]*Query, error)

	// CreateResponse inserts a settled response row. A missing ID is
	// assigned a fresh UUID.
	CreateResponse(ctx context.Context, r *Response) error

	// ListResponses returns a query's responses in insertion order.
	ListResponses(ctx context.Context, queryID string) ([]*Response, error)

	// Close releases the store's resources.
	Close() error
}
