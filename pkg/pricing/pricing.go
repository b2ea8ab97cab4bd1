package pricing

import (
	"log/slog"
	"sync"
)

// Entry holds per-1K-token prices for a model, in USD.
type Entry struct {
	// InputPer1K is the price per 1000 input (prompt) tokens
	InputPer1K float64 `yaml:"input_per_1k" json:"inputPer1K"`

	// OutputPer1K is the price per 1000 output (completion) tokens
	OutputPer1K float64 `yaml:"output_per_1k" json:"outputPer1K"`
}

// defaultEntries is the built-in pricing table, keyed by model id.
// Config may override or extend it at load time or via hot reload.
var defaultEntries = map[string]Entry{
	"gpt-4o":                            {InputPer1K: 0.0025, OutputPer1K: 0.01},
	"gpt-4o-mini":                       {InputPer1K: 0.00015, OutputPer1K: 0.0006},
	"gpt-3.5-turbo":                     {InputPer1K: 0.0005, OutputPer1K: 0.0015},
	"claude-3-5-sonnet-20241022":        {InputPer1K: 0.003, OutputPer1K: 0.015},
	"claude-3-haiku-20240307":           {InputPer1K: 0.00025, OutputPer1K: 0.00125},
	"llama-3.1-sonar-large-128k-online": {InputPer1K: 0.001, OutputPer1K: 0.001},
	"llama-3.1-sonar-small-128k-online": {InputPer1K: 0.0002, OutputPer1K: 0.0002},
	"gemini-1.5-pro":                    {InputPer1K: 0.00125, OutputPer1K: 0.005},
	"gemini-1.5-flash":                  {InputPer1K: 0.000075, OutputPer1K: 0.0003},
}

// Table is a thread-safe model pricing table.
//
// Lookups are frequent (one per settled provider response) while updates
// only happen on config reload, so a plain RWMutex over a map is enough.
type Table struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewTable creates a pricing table seeded with the built-in entries,
// overlaid with any overrides.
func NewTable(overrides map[string]Entry) *Table {
	entries := make(map[string]Entry, len(defaultEntries)+len(overrides))
	for model, entry := range defaultEntries {
		entries[model] = entry
	}
	for model, entry := range overrides {
		entries[model] = entry
	}

	return &Table{entries: entries}
}

// Lookup returns the pricing entry for a model.
func (t *Table) Lookup(model string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[model]
	return entry, ok
}

// Cost computes the cost in USD for a model invocation.
// Returns nil when the model has no pricing entry: an unknown cost is
// reported as absent, never as zero.
func (t *Table) Cost(model string, inputTokens, outputTokens int) *float64 {
	entry, ok := t.Lookup(model)
	if !ok {
		return nil
	}

	cost := tokenCost(inputTokens, entry.InputPer1K) + tokenCost(outputTokens, entry.OutputPer1K)
	return &cost
}

// Update overlays the built-in table with new overrides, replacing any
// previous overrides. Called from the config hot-reload path.
func (t *Table) Update(overrides map[string]Entry) {
	entries := make(map[string]Entry, len(defaultEntries)+len(overrides))
	for model, entry := range defaultEntries {
		entries[model] = entry
	}
	for model, entry := range overrides {
		entries[model] = entry
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()

	slog.Info("pricing table updated", "models", len(entries))
}

// Models returns the model ids with pricing entries.
func (t *Table) Models() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	models := make([]string, 0, len(t.entries))
	for model := range t.entries {
		models = append(models, model)
	}
	return models
}

// tokenCost computes the cost of a token count at a per-1K rate.
func tokenCost(tokens int, costPer1K float64) float64 {
	return (float64(tokens) / 1000.0) * costPer1K
}
