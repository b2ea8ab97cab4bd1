package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"parallax-hq/parallax/pkg/pricing"
	"parallax-hq/parallax/pkg/providers"
	"parallax-hq/parallax/pkg/store"
	"parallax-hq/parallax/pkg/telemetry/logging"
	"parallax-hq/parallax/pkg/telemetry/metrics"
	"parallax-hq/parallax/pkg/usage"
)

// titleMaxLen caps conversation titles derived from the first prompt.
const titleMaxLen = 50

// ModelOverride carries per-provider tuning for one request.
type ModelOverride struct {
	// Model overrides the provider's default model
	Model string `json:"model,omitempty"`

	// Temperature controls randomness (0.0 to 2.0)
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens caps the completion length
	MaxTokens int `json:"maxTokens,omitempty"`
}

// Request is one prompt submitted for fan-out, streaming or not.
type Request struct {
	// Prompt is the user prompt (required)
	Prompt string `json:"prompt"`

	// SystemPrompt is an optional system instruction
	SystemPrompt string `json:"systemPrompt,omitempty"`

	// ConversationID continues an existing conversation. Empty starts a
	// new one.
	ConversationID string `json:"conversationId,omitempty"`

	// ConversationTitle names a newly created conversation. Ignored when
	// ConversationID is set.
	ConversationTitle string `json:"conversationTitle,omitempty"`

	// Models holds per-provider overrides, keyed by provider id
	Models map[string]ModelOverride `json:"models,omitempty"`

	// UserID is the opaque caller identity, set by the auth layer
	UserID string `json:"-"`
}

// Result is the settled outcome of a non-streaming fan-out.
type Result struct {
	QueryID        string            `json:"queryId"`
	ConversationID string            `json:"conversationId"`
	Responses      []*store.Response `json:"responses"`
}

// Engine orchestrates the provider fan-out: it validates requests, owns
// conversation and query bookkeeping, and runs the non-streaming
// coordinator and the streaming aggregator over the provider registry.
type Engine struct {
	registry *providers.Registry
	store    store.Store
	pricing  *pricing.Table
	usage    usage.Tracker
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewEngine creates a query engine. The usage tracker and metrics collector
// may be nil; accounting and instrumentation are then skipped.
func NewEngine(registry *providers.Registry, st store.Store, table *pricing.Table, tracker usage.Tracker, collector *metrics.Collector, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry: registry,
		store:    st,
		pricing:  table,
		usage:    tracker,
		metrics:  collector,
		logger:   logger,
	}
}

// Registry returns the provider registry the engine fans out over.
func (e *Engine) Registry() *providers.Registry {
	return e.registry
}

// validate rejects malformed requests before any provider is contacted.
func (e *Engine) validate(req *Request) error {
	if req.Prompt == "" {
		return &providers.ValidationError{Field: "prompt", Message: "prompt is required"}
	}
	for id, ov := range req.Models {
		if _, ok := e.registry.Get(id); !ok {
			return &providers.ValidationError{Field: "models", Message: fmt.Sprintf("unknown provider %q", id)}
		}
		if ov.Temperature < 0 || ov.Temperature > 2 {
			return &providers.ValidationError{Field: "temperature", Message: fmt.Sprintf("temperature %v for provider %q out of range [0, 2]", ov.Temperature, id)}
		}
		if ov.MaxTokens < 0 {
			return &providers.ValidationError{Field: "maxTokens", Message: fmt.Sprintf("maxTokens %d for provider %q must be positive", ov.MaxTokens, id)}
		}
	}
	return nil
}

// prepare validates the request and creates the conversation (when new) and
// query rows. No provider has been contacted when prepare returns an error,
// and no rows have been written on the validation path.
func (e *Engine) prepare(ctx context.Context, req *Request) (*store.Query, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	conversationID := req.ConversationID
	if conversationID == "" {
		conv := &store.Conversation{
			UserID:    req.UserID,
			Title:     conversationTitle(req),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := e.store.CreateConversation(ctx, conv); err != nil {
			return nil, err
		}
		conversationID = conv.ID
	} else {
		conv, err := e.store.GetConversation(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		if req.UserID != "" && conv.UserID != "" && conv.UserID != req.UserID {
			return nil, &store.NotFoundError{Kind: "conversation", ID: conversationID}
		}
		if err := e.store.TouchConversation(ctx, conversationID, now); err != nil {
			return nil, err
		}
	}

	q := &store.Query{
		ConversationID: conversationID,
		Prompt:         req.Prompt,
		SystemPrompt:   req.SystemPrompt,
		CreatedAt:      now,
	}
	if err := e.store.CreateQuery(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// generateRequest builds the adapter-level request for one provider,
// applying that provider's override if present.
func generateRequest(req *Request, providerID string) *providers.GenerateRequest {
	ov := req.Models[providerID]
	return &providers.GenerateRequest{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		Model:        ov.Model,
		Temperature:  ov.Temperature,
		MaxTokens:    ov.MaxTokens,
	}
}

// settle turns one provider's settled result into a persisted Response row,
// records usage and metrics, and returns the row. Persistence failures are
// logged but do not discard the response: the caller still reports the
// provider's outcome to the client.
func (e *Engine) settle(ctx context.Context, queryID string, res *providers.GenerateResult) *store.Response {
	row := &store.Response{
		QueryID:    queryID,
		Provider:   res.Provider,
		Model:      res.Model,
		Content:    res.Content,
		DurationMs: res.Duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}

	errType := ""
	if res.Error != nil {
		row.Error = res.Error.Error()
		errType = providers.ErrorType(res.Error)
	}

	tokens := 0
	if res.Usage != nil {
		total := res.Usage.TotalTokens
		if total == 0 {
			total = res.Usage.InputTokens + res.Usage.OutputTokens
		}
		row.TokenCount = &total
		row.Cost = e.pricing.Cost(res.Model, res.Usage.InputTokens, res.Usage.OutputTokens)
		tokens = total
	}

	if err := e.store.CreateResponse(ctx, row); err != nil {
		e.logger.ErrorContext(ctx, "persisting response failed",
			"provider", res.Provider, "query_id", queryID, "error", err)
	}

	if e.metrics != nil {
		e.metrics.RecordProviderCall(res.Provider, res.Model, res.Duration, tokens, errType)
		if row.Cost != nil {
			e.metrics.RecordCost(res.Provider, res.Model, *row.Cost)
		}
	}
	e.recordUsage(ctx, row, res.Usage)

	return row
}

// recordUsage applies one best-effort accounting entry for a settled row.
func (e *Engine) recordUsage(ctx context.Context, row *store.Response, tu *providers.TokenUsage) {
	if e.usage == nil || row.Error != "" {
		return
	}

	rec := &usage.Record{
		UserID:   userIDFromContext(ctx),
		Provider: row.Provider,
		Model:    row.Model,
	}
	if tu != nil {
		rec.InputTokens = tu.InputTokens
		rec.OutputTokens = tu.OutputTokens
	}
	if row.Cost != nil {
		rec.Cost = *row.Cost
	}

	if err := e.usage.Record(ctx, rec); err != nil {
		e.logger.WarnContext(ctx, "usage accounting failed",
			"provider", row.Provider, "error", err)
	}
}

// userIDFromContext returns the authenticated identity the auth middleware
// stored on the context, or "" for unauthenticated requests.
func userIDFromContext(ctx context.Context) string {
	return logging.GetUser(ctx)
}

// conversationTitle picks a title for a new conversation: the explicit
// title if given, otherwise the first 50 characters of the prompt with an
// ellipsis when truncated.
func conversationTitle(req *Request) string {
	if req.ConversationTitle != "" {
		return req.ConversationTitle
	}
	if utf8.RuneCountInString(req.Prompt) <= titleMaxLen {
		return req.Prompt
	}
	runes := []rune(req.Prompt)
	return string(runes[:titleMaxLen]) + "..."
}
