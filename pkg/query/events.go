package query

// Event kinds emitted on the aggregated stream.
const (
	EventStart    = "start"
	EventChunk    = "chunk"
	EventComplete = "complete"
	EventError    = "error"
	EventEnd      = "end"
)

// Event is one record of the aggregated stream sent to the client.
//
// The sequence over one connection is: exactly one start, then an
// interleaving of chunk events keyed by provider, exactly one complete or
// error per provider, and exactly one end. Clients must treat end as the
// sole terminal signal for the whole aggregation; a provider's complete or
// error terminates that provider only.
type Event struct {
	// Type is one of start, chunk, complete, error, end
	Type string `json:"type"`

	// QueryID and ConversationID bind the stream to persisted rows (start only)
	QueryID        string `json:"queryId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`

	// Providers lists the participating provider ids in fan-out order (start only)
	Providers []string `json:"providers,omitempty"`

	// Provider keys chunk, complete, and error events
	Provider string `json:"provider,omitempty"`

	// Content is the incremental text fragment (chunk only)
	Content string `json:"content,omitempty"`

	// TokenCount is the total token count, when reported (complete only)
	TokenCount *int `json:"tokenCount,omitempty"`

	// Duration is the provider's wall-clock time in milliseconds (complete only)
	Duration *int64 `json:"duration,omitempty"`

	// Error is the failure message (error events only)
	Error string `json:"error,omitempty"`
}

func startEvent(queryID, conversationID string, providerIDs []string) *Event {
	return &Event{
		Type:           EventStart,
		QueryID:        queryID,
		ConversationID: conversationID,
		Providers:      providerIDs,
	}
}

func chunkEvent(provider, content string) *Event {
	return &Event{Type: EventChunk, Provider: provider, Content: content}
}

func completeEvent(provider string, tokenCount *int, durationMs int64) *Event {
	return &Event{
		Type:       EventComplete,
		Provider:   provider,
		TokenCount: tokenCount,
		Duration:   &durationMs,
	}
}

func errorEvent(provider, message string) *Event {
	return &Event{Type: EventError, Provider: provider, Error: message}
}

func endEvent() *Event {
	return &Event{Type: EventEnd}
}
