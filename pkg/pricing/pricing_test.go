package pricing

import (
	"math"
	"testing"
)

func TestCost(t *testing.T) {
	table := NewTable(map[string]Entry{
		"test-model": {InputPer1K: 0.003, OutputPer1K: 0.015},
	})

	tests := []struct {
		name         string
		model        string
		inputTokens  int
		outputTokens int
		want         float64
		wantAbsent   bool
	}{
		{
			name:         "known model",
			model:        "test-model",
			inputTokens:  100,
			outputTokens: 50,
			want:         0.00105,
		},
		{
			name:         "zero tokens",
			model:        "test-model",
			inputTokens:  0,
			outputTokens: 0,
			want:         0,
		},
		{
			name:       "unknown model",
			model:      "no-such-model",
			wantAbsent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost := table.Cost(tt.model, tt.inputTokens, tt.outputTokens)
			if tt.wantAbsent {
				if cost != nil {
					t.Fatalf("expected absent cost, got %v", *cost)
				}
				return
			}
			if cost == nil {
				t.Fatal("expected cost, got nil")
			}
			if math.Abs(*cost-tt.want) > 1e-12 {
				t.Errorf("expected cost %v, got %v", tt.want, *cost)
			}
		})
	}
}

func TestBuiltinEntries(t *testing.T) {
	table := NewTable(nil)

	for _, model := range []string{"gpt-4o", "claude-3-5-sonnet-20241022", "gemini-1.5-pro"} {
		if _, ok := table.Lookup(model); !ok {
			t.Errorf("expected builtin pricing for %q", model)
		}
	}
}

func TestOverrides(t *testing.T) {
	table := NewTable(map[string]Entry{
		"gpt-4o": {InputPer1K: 1, OutputPer1K: 2},
	})

	entry, ok := table.Lookup("gpt-4o")
	if !ok {
		t.Fatal("expected entry for gpt-4o")
	}
	if entry.InputPer1K != 1 || entry.OutputPer1K != 2 {
		t.Errorf("override not applied: %+v", entry)
	}
}

func TestUpdateReplacesOverrides(t *testing.T) {
	table := NewTable(map[string]Entry{
		"custom-model": {InputPer1K: 1, OutputPer1K: 1},
	})

	table.Update(map[string]Entry{
		"other-model": {InputPer1K: 2, OutputPer1K: 2},
	})

	if _, ok := table.Lookup("custom-model"); ok {
		t.Error("stale override survived update")
	}
	if _, ok := table.Lookup("other-model"); !ok {
		t.Error("new override missing after update")
	}
	if _, ok := table.Lookup("gpt-4o"); !ok {
		t.Error("builtin entry missing after update")
	}
}
