package usage

import (
	"context"
	"sort"
	"sync"
)

// MemoryTracker is an in-memory Tracker used in tests and ephemeral runs.
type MemoryTracker struct {
	mu     sync.Mutex
	totals map[string]*Summary // keyed by user|provider|model
}

// NewMemoryTracker creates an empty in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{totals: make(map[string]*Summary)}
}

// Record applies one accounting entry.
func (t *MemoryTracker) Record(_ context.Context, rec *Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := rec.UserID + "|" + rec.Provider + "|" + rec.Model
	s, ok := t.totals[key]
	if !ok {
		s = &Summary{UserID: rec.UserID, Provider: rec.Provider, Model: rec.Model}
		t.totals[key] = s
	}
	s.Requests++
	s.InputTokens += int64(rec.InputTokens)
	s.OutputTokens += int64(rec.OutputTokens)
	s.Cost += rec.Cost
	return nil
}

// Summarize returns a user's accumulated usage.
func (t *MemoryTracker) Summarize(_ context.Context, userID string) ([]*Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []*Summary
	for _, s := range t.totals {
		if s.UserID == userID {
			clone := *s
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Model < out[j].Model
	})
	return out, nil
}

// Close releases the tracker's resources.
func (t *MemoryTracker) Close() error {
	return nil
}
