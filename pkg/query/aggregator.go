package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"parallax-hq/parallax/pkg/providers"
	"parallax-hq/parallax/pkg/store"
)

// Stream fans the request out to every registered provider's streaming API
// and multiplexes the chunks into one event sequence.
//
// Event ordering on the returned channel: one start event first, then an
// interleaving of chunk events, exactly one complete or error event per
// provider, then one end event, after which the channel is closed. A
// provider's Response row is persisted before its complete or error event
// is emitted, so a client that sees the event can immediately read the row.
//
// Validation and bookkeeping failures are returned as an error before any
// event is emitted and before any provider is contacted.
func (e *Engine) Stream(ctx context.Context, req *Request) (<-chan *Event, error) {
	q, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	events := make(chan *Event, providers.StreamBufferSize)
	go e.aggregate(ctx, q, req, events)
	return events, nil
}

// emitter serializes event delivery for one aggregation. Once the client
// context is cancelled it drops further events but keeps returning, so
// provider goroutines can drain their streams and persist terminal state.
type emitter struct {
	ctx    context.Context
	events chan<- *Event

	mu   sync.Mutex
	gone bool
}

func (em *emitter) emit(ev *Event) bool {
	em.mu.Lock()
	defer em.mu.Unlock()
	if em.gone {
		return false
	}
	select {
	case em.events <- ev:
		return true
	case <-em.ctx.Done():
		em.gone = true
		return false
	}
}

// aggregate runs one goroutine per provider feeding a shared event channel,
// then emits end and closes the channel once every provider is terminal.
func (e *Engine) aggregate(ctx context.Context, q *store.Query, req *Request, events chan *Event) {
	defer close(events)

	if e.metrics != nil {
		e.metrics.StreamStarted()
		defer e.metrics.StreamEnded()
	}

	em := &emitter{ctx: ctx, events: events}

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "stream aggregation fault",
				"query_id", q.ID, "panic", r)
			em.emit(&Event{Type: EventError, Error: fmt.Sprintf("aggregation failed: %v", r)})
		}
	}()

	// The start event goes out before any provider goroutine launches, so
	// the client binds conversation identity before the first chunk.
	e.send(em, startEvent(q.ID, q.ConversationID, e.registry.IDs()))

	var wg sync.WaitGroup
	for _, adapter := range e.registry.Adapters() {
		wg.Add(1)
		go func(adapter providers.Adapter) {
			defer wg.Done()
			e.streamProvider(ctx, em, q, req, adapter)
		}(adapter)
	}
	wg.Wait()

	e.send(em, endEvent())
}

// send emits one event and counts it.
func (e *Engine) send(em *emitter, ev *Event) {
	if em.emit(ev) && e.metrics != nil {
		e.metrics.RecordStreamEvent(ev.Type)
	}
}

// streamProvider consumes one provider's stream: forwards chunks as they
// arrive, accumulates the full content, and on the terminal chunk persists
// the Response row and emits the provider's complete or error event.
//
// Persistence runs even when the client has disconnected: an upstream call
// already in flight settles and is recorded regardless of client presence.
func (e *Engine) streamProvider(ctx context.Context, em *emitter, q *store.Query, req *Request, adapter providers.Adapter) {
	providerID := adapter.ID()
	greq := generateRequest(req, providerID)
	model := adapter.Descriptor().ResolveModel(greq.Model)
	start := time.Now()

	var content strings.Builder

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "provider stream panicked",
				"provider", providerID, "panic", r)
			err := fmt.Errorf("provider %q stream failed unexpectedly", providerID)
			e.settleStream(ctx, em, q, providerID, model, content.String(), nil, time.Since(start), err)
		}
	}()

	for chunk := range adapter.GenerateStream(ctx, greq) {
		if chunk.Done {
			e.settleStream(ctx, em, q, providerID, model, content.String(), chunk.Usage, time.Since(start), chunk.Error)
			return
		}
		if chunk.Content == "" {
			continue
		}
		content.WriteString(chunk.Content)
		e.send(em, chunkEvent(providerID, chunk.Content))
	}

	// The channel closed without a terminal chunk. Treat it as a failed
	// stream so the provider still reaches a terminal state.
	err := &providers.StreamError{Provider: providerID, Message: "stream ended without terminal chunk"}
	e.settleStream(ctx, em, q, providerID, model, content.String(), nil, time.Since(start), err)
}

// settleStream persists one provider's terminal state and then emits its
// complete or error event. Persistence uses a context detached from the
// client connection so a disconnect cannot lose a settled row.
func (e *Engine) settleStream(ctx context.Context, em *emitter, q *store.Query, providerID, model, content string, tu *providers.TokenUsage, elapsed time.Duration, streamErr error) {
	// Failed streams keep whatever content accumulated before the failure
	// on the persisted row, alongside the error message.
	res := &providers.GenerateResult{
		Provider: providerID,
		Model:    model,
		Content:  content,
		Usage:    tu,
		Duration: elapsed,
		Error:    streamErr,
	}

	row := e.settle(context.WithoutCancel(ctx), q.ID, res)

	if streamErr != nil {
		e.send(em, errorEvent(providerID, streamErr.Error()))
		return
	}
	e.send(em, completeEvent(providerID, row.TokenCount, row.DurationMs))
}
