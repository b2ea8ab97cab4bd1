package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store implementation.
// It is used in tests and for ephemeral deployments where persistence
// across restarts is not needed.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	queries       map[string]*Query
	responses     map[string][]*Response // keyed by query id, insertion order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*Conversation),
		queries:       make(map[string]*Query),
		responses:     make(map[string][]*Response),
	}
}

// CreateConversation inserts a new conversation.
func (s *MemoryStore) CreateConversation(_ context.Context, c *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	clone := *c
	s.conversations[c.ID] = &clone
	return nil
}

// GetConversation returns a conversation by id.
func (s *MemoryStore) GetConversation(_ context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[id]
	if !ok {
		return nil, &NotFoundError{Kind: "conversation", ID: id}
	}
	clone := *c
	return &clone, nil
}

// ListConversations returns a user's conversations, most recently updated first.
func (s *MemoryStore) ListConversations(_ context.Context, userID string) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Conversation
	for _, c := range s.conversations {
		if c.UserID == userID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// TouchConversation bumps a conversation's updated_at timestamp.
func (s *MemoryStore) TouchConversation(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return &NotFoundError{Kind: "conversation", ID: id}
	}
	c.UpdatedAt = at.UTC()
	return nil
}

// DeleteConversation removes a conversation and its queries and responses.
func (s *MemoryStore) DeleteConversation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return &NotFoundError{Kind: "conversation", ID: id}
	}
	s.deleteConversationLocked(id)
	return nil
}

// DeleteConversationsBefore removes conversations last updated before the cutoff.
func (s *MemoryStore) DeleteConversationsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, c := range s.conversations {
		if c.UpdatedAt.Before(cutoff) {
			s.deleteConversationLocked(id)
			removed++
		}
	}
	return removed, nil
}

// deleteConversationLocked cascades a conversation delete. Caller holds mu.
func (s *MemoryStore) deleteConversationLocked(id string) {
	delete(s.conversations, id)
	for qid, q := range s.queries {
		if q.ConversationID == id {
			delete(s.queries, qid)
			delete(s.responses, qid)
		}
	}
}

// CreateQuery inserts a new query.
func (s *MemoryStore) CreateQuery(_ context.Context, q *Query) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	clone := *q
	s.queries[q.ID] = &clone
	return nil
}

// ListQueries returns a conversation's queries in submission order.
func (s *MemoryStore) ListQueries(_ context.Context, conversationID string) ([]*Query, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Query
	for _, q := range s.queries {
		if q.ConversationID == conversationID {
			clone := *q
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CreateResponse inserts a settled response row.
func (s *MemoryStore) CreateResponse(_ context.Context, r *Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	clone := *r
	s.responses[r.QueryID] = append(s.responses[r.QueryID], &clone)
	return nil
}

// ListResponses returns a query's responses in insertion order.
func (s *MemoryStore) ListResponses(_ context.Context, queryID string) ([]*Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.responses[queryID]
	out := make([]*Response, 0, len(rows))
	for _, r := range rows {
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}

// Close releases the store's resources.
func (s *MemoryStore) Close() error {
	return nil
}
