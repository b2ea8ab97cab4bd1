package query

import (
	"context"
	"math"
	"strings"
	"testing"

	"parallax-hq/parallax/internal/providertest"
	"parallax-hq/parallax/pkg/pricing"
	"parallax-hq/parallax/pkg/providers"
	"parallax-hq/parallax/pkg/store"
	"parallax-hq/parallax/pkg/telemetry/logging"
	"parallax-hq/parallax/pkg/usage"
)

func TestConversationTitle(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
		want string
	}{
		{
			name: "explicit title wins",
			req:  &Request{Prompt: "some prompt", ConversationTitle: "My Chat"},
			want: "My Chat",
		},
		{
			name: "short prompt used verbatim",
			req:  &Request{Prompt: "What is 2+2?"},
			want: "What is 2+2?",
		},
		{
			name: "long prompt truncated",
			req:  &Request{Prompt: strings.Repeat("x", 60)},
			want: strings.Repeat("x", 50) + "...",
		},
		{
			name: "exactly fifty characters kept",
			req:  &Request{Prompt: strings.Repeat("y", 50)},
			want: strings.Repeat("y", 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := conversationTitle(tt.req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestQueryComputesCost(t *testing.T) {
	a := providertest.NewFakeAdapter("alpha", "hello")
	a.Result.Usage = &providers.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150}

	registry := providers.NewRegistry()
	_ = registry.Register(a)

	table := pricing.NewTable(map[string]pricing.Entry{
		"alpha-model": {InputPer1K: 0.003, OutputPer1K: 0.015},
	})
	engine := NewEngine(registry, store.NewMemoryStore(), table, nil, nil, testLogger())

	result, err := engine.Query(context.Background(), &Request{Prompt: "hi"})
	if err != nil {
		t.Fatal(err)
	}

	res := result.Responses[0]
	if res.Cost == nil {
		t.Fatal("expected cost")
	}
	if math.Abs(*res.Cost-0.00105) > 1e-12 {
		t.Errorf("expected cost 0.00105, got %v", *res.Cost)
	}
	if res.TokenCount == nil || *res.TokenCount != 150 {
		t.Errorf("expected token count 150, got %v", res.TokenCount)
	}
}

func TestQueryOmitsCostWithoutPricing(t *testing.T) {
	a := providertest.NewFakeAdapter("alpha", "hello")
	engine, _ := newTestEngine(t, a)

	result, err := engine.Query(context.Background(), &Request{Prompt: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Responses[0].Cost != nil {
		t.Errorf("expected absent cost for unpriced model, got %v", *result.Responses[0].Cost)
	}
}

func TestQueryRecordsUsage(t *testing.T) {
	a := providertest.NewFakeAdapter("alpha", "hello")

	registry := providers.NewRegistry()
	_ = registry.Register(a)

	tracker := usage.NewMemoryTracker()
	engine := NewEngine(registry, store.NewMemoryStore(), pricing.NewTable(nil), tracker, nil, testLogger())

	ctx := logging.WithUser(context.Background(), "alice")
	if _, err := engine.Query(ctx, &Request{Prompt: "hi", UserID: "alice"}); err != nil {
		t.Fatal(err)
	}

	summaries, err := tracker.Summarize(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 usage row, got %d", len(summaries))
	}
	s := summaries[0]
	if s.Provider != "alpha" || s.Requests != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.InputTokens != 10 || s.OutputTokens != 20 {
		t.Errorf("unexpected token totals %+v", s)
	}
}

func TestQuerySkipsUsageOnFailure(t *testing.T) {
	a := providertest.NewFakeAdapter("alpha", "")
	a.Result.Error = &providers.AuthError{Provider: "alpha", Message: "bad key"}

	registry := providers.NewRegistry()
	_ = registry.Register(a)

	tracker := usage.NewMemoryTracker()
	engine := NewEngine(registry, store.NewMemoryStore(), pricing.NewTable(nil), tracker, nil, testLogger())

	ctx := logging.WithUser(context.Background(), "alice")
	if _, err := engine.Query(ctx, &Request{Prompt: "hi", UserID: "alice"}); err != nil {
		t.Fatal(err)
	}

	summaries, _ := tracker.Summarize(context.Background(), "alice")
	if len(summaries) != 0 {
		t.Errorf("failed responses must not be billed, got %d rows", len(summaries))
	}
}
