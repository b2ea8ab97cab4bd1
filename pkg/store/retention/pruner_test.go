package retention

import (
	"context"
	"testing"
	"time"

	"parallax-hq/parallax/pkg/store"
)

func TestPruneDeletesOldConversations(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	old := &store.Conversation{
		UserID:    "alice",
		Title:     "old",
		CreatedAt: time.Now().AddDate(0, 0, -100),
		UpdatedAt: time.Now().AddDate(0, 0, -100),
	}
	recent := &store.Conversation{UserID: "alice", Title: "recent"}
	if err := st.CreateConversation(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := st.CreateConversation(ctx, recent); err != nil {
		t.Fatal(err)
	}

	pruner := NewPruner(st, &Config{RetentionDays: 90, PruneSchedule: "0 3 * * *"})
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
	if _, err := st.GetConversation(ctx, old.ID); err == nil {
		t.Error("old conversation should be pruned")
	}
	if _, err := st.GetConversation(ctx, recent.ID); err != nil {
		t.Errorf("recent conversation should remain: %v", err)
	}
}

func TestPruneDisabledKeepsEverything(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	old := &store.Conversation{
		UserID:    "alice",
		CreatedAt: time.Now().AddDate(-1, 0, 0),
		UpdatedAt: time.Now().AddDate(-1, 0, 0),
	}
	if err := st.CreateConversation(ctx, old); err != nil {
		t.Fatal(err)
	}

	pruner := NewPruner(st, &Config{RetentionDays: 0})
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 0 {
		t.Errorf("expected nothing pruned, got %d", deleted)
	}
	if _, err := st.GetConversation(ctx, old.ID); err != nil {
		t.Errorf("conversation should remain with retention disabled: %v", err)
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	st := store.NewMemoryStore()
	pruner := NewPruner(st, &Config{RetentionDays: 90, PruneSchedule: "0 3 * * *"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !pruner.scheduler.IsRunning() {
		t.Error("expected scheduler running after start")
	}
	if next := pruner.NextPruning(); next == nil || next.Before(time.Now()) {
		t.Errorf("expected a future next run, got %v", next)
	}

	pruner.Stop()
	if pruner.scheduler.IsRunning() {
		t.Error("expected scheduler stopped")
	}
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	st := store.NewMemoryStore()
	pruner := NewPruner(st, &Config{RetentionDays: 90, PruneSchedule: "nonsense"})

	if err := pruner.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}
