package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreConversationLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := &Conversation{UserID: "alice", Title: "First chat"}
	if err := s.CreateConversation(ctx, c); err != nil {
		t.Fatal(err)
	}
	if c.ID == "" {
		t.Fatal("expected generated id")
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := s.GetConversation(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "First chat" || got.UserID != "alice" {
		t.Errorf("unexpected conversation %+v", got)
	}

	if err := s.DeleteConversation(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetConversation(ctx, c.ID); err == nil {
		t.Error("expected miss after delete")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var notFound *NotFoundError

	if _, err := s.GetConversation(ctx, "missing"); !errors.As(err, &notFound) {
		t.Errorf("GetConversation: expected not-found, got %v", err)
	}
	if err := s.TouchConversation(ctx, "missing", time.Now()); !errors.As(err, &notFound) {
		t.Errorf("TouchConversation: expected not-found, got %v", err)
	}
	if err := s.DeleteConversation(ctx, "missing"); !errors.As(err, &notFound) {
		t.Errorf("DeleteConversation: expected not-found, got %v", err)
	}
}

func TestMemoryStoreListConversationsOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now().UTC()

	for i, title := range []string{"oldest", "middle", "newest"} {
		c := &Conversation{
			UserID:    "alice",
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.CreateConversation(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	// Another user's conversation must not appear.
	if err := s.CreateConversation(ctx, &Conversation{UserID: "bob", Title: "other"}); err != nil {
		t.Fatal(err)
	}

	out, err := s.ListConversations(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(out))
	}
	want := []string{"newest", "middle", "oldest"}
	for i, title := range want {
		if out[i].Title != title {
			t.Errorf("position %d: expected %q, got %q", i, title, out[i].Title)
		}
	}
}

func TestMemoryStoreTouchReorders(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now().UTC()

	a := &Conversation{UserID: "alice", Title: "a", UpdatedAt: base, CreatedAt: base}
	b := &Conversation{UserID: "alice", Title: "b", UpdatedAt: base.Add(time.Minute), CreatedAt: base}
	if err := s.CreateConversation(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateConversation(ctx, b); err != nil {
		t.Fatal(err)
	}

	if err := s.TouchConversation(ctx, a.ID, base.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	out, _ := s.ListConversations(ctx, "alice")
	if out[0].Title != "a" {
		t.Errorf("expected touched conversation first, got %q", out[0].Title)
	}
}

func TestMemoryStoreQueriesAndResponses(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := &Conversation{UserID: "alice"}
	if err := s.CreateConversation(ctx, c); err != nil {
		t.Fatal(err)
	}

	base := time.Now().UTC()
	q1 := &Query{ConversationID: c.ID, Prompt: "first", CreatedAt: base}
	q2 := &Query{ConversationID: c.ID, Prompt: "second", CreatedAt: base.Add(time.Second)}
	if err := s.CreateQuery(ctx, q1); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateQuery(ctx, q2); err != nil {
		t.Fatal(err)
	}

	queries, err := s.ListQueries(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(queries) != 2 || queries[0].Prompt != "first" || queries[1].Prompt != "second" {
		t.Errorf("expected queries in submission order, got %+v", queries)
	}

	tokens := 15
	rows := []*Response{
		{QueryID: q1.ID, Provider: "openai", Model: "gpt-4o", Content: "hi", TokenCount: &tokens, DurationMs: 120},
		{QueryID: q1.ID, Provider: "anthropic", Model: "claude", Error: "rate limited", DurationMs: 80},
	}
	for _, r := range rows {
		if err := s.CreateResponse(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListResponses(ctx, q1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(got))
	}
	if got[0].Provider != "openai" || got[1].Provider != "anthropic" {
		t.Errorf("expected insertion order, got %q then %q", got[0].Provider, got[1].Provider)
	}
	if got[0].TokenCount == nil || *got[0].TokenCount != 15 {
		t.Errorf("unexpected token count %v", got[0].TokenCount)
	}
	if got[1].Error != "rate limited" {
		t.Errorf("unexpected error %q", got[1].Error)
	}
}

func TestMemoryStoreCascadeDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := &Conversation{UserID: "alice"}
	if err := s.CreateConversation(ctx, c); err != nil {
		t.Fatal(err)
	}
	q := &Query{ConversationID: c.ID, Prompt: "hi"}
	if err := s.CreateQuery(ctx, q); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateResponse(ctx, &Response{QueryID: q.ID, Provider: "openai"}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteConversation(ctx, c.ID); err != nil {
		t.Fatal(err)
	}

	queries, _ := s.ListQueries(ctx, c.ID)
	if len(queries) != 0 {
		t.Error("expected cascaded query delete")
	}
	responses, _ := s.ListResponses(ctx, q.ID)
	if len(responses) != 0 {
		t.Error("expected cascaded response delete")
	}
}

func TestMemoryStoreDeleteConversationsBefore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cutoff := time.Now().UTC()

	stale := &Conversation{UserID: "alice", Title: "stale", CreatedAt: cutoff.Add(-48 * time.Hour), UpdatedAt: cutoff.Add(-48 * time.Hour)}
	fresh := &Conversation{UserID: "alice", Title: "fresh", CreatedAt: cutoff.Add(time.Hour), UpdatedAt: cutoff.Add(time.Hour)}
	if err := s.CreateConversation(ctx, stale); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateConversation(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	removed, err := s.DeleteConversationsBefore(ctx, cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if _, err := s.GetConversation(ctx, stale.ID); err == nil {
		t.Error("stale conversation should be gone")
	}
	if _, err := s.GetConversation(ctx, fresh.ID); err != nil {
		t.Errorf("fresh conversation should remain: %v", err)
	}
}

func TestMemoryStoreReturnsClones(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c := &Conversation{UserID: "alice", Title: "original"}
	if err := s.CreateConversation(ctx, c); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetConversation(ctx, c.ID)
	got.Title = "mutated"

	again, _ := s.GetConversation(ctx, c.ID)
	if again.Title != "original" {
		t.Error("store must not expose internal state to callers")
	}
}
