package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"parallax-hq/parallax/pkg/providers"
	"parallax-hq/parallax/pkg/store"
)

// Query fans the request out to every registered provider concurrently,
// waits for all of them to settle, and returns one persisted Response per
// provider in registry order.
//
// Failure isolation: a provider's error, or even a panic escaping its
// adapter, produces an error row for that provider and nothing else. Other
// providers' rows are unaffected.
func (e *Engine) Query(ctx context.Context, req *Request) (*Result, error) {
	q, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	adapters := e.registry.Adapters()
	results := make([]*providers.GenerateResult, len(adapters))

	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter providers.Adapter) {
			defer wg.Done()
			results[i] = e.callProvider(ctx, adapter, req)
		}(i, adapter)
	}
	wg.Wait()

	// Persistence uses a context detached from the client connection so a
	// disconnect after the fan-out cannot lose settled rows.
	settleCtx := context.WithoutCancel(ctx)
	responses := make([]*store.Response, 0, len(results))
	for _, res := range results {
		responses = append(responses, e.settle(settleCtx, q.ID, res))
	}

	e.logger.InfoContext(ctx, "query settled",
		"query_id", q.ID,
		"conversation_id", q.ConversationID,
		"providers", len(responses))

	return &Result{
		QueryID:        q.ID,
		ConversationID: q.ConversationID,
		Responses:      responses,
	}, nil
}

// callProvider runs one adapter's Generate and guarantees a settled result
// even if the adapter violates its never-fault contract.
func (e *Engine) callProvider(ctx context.Context, adapter providers.Adapter, req *Request) (res *providers.GenerateResult) {
	start := time.Now()
	greq := generateRequest(req, adapter.ID())

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "provider panicked",
				"provider", adapter.ID(), "panic", r)
			res = &providers.GenerateResult{
				Provider: adapter.ID(),
				Model:    adapter.Descriptor().ResolveModel(greq.Model),
				Duration: time.Since(start),
				Error:    fmt.Errorf("provider %q failed unexpectedly", adapter.ID()),
			}
		}
	}()

	return adapter.Generate(ctx, greq)
}
