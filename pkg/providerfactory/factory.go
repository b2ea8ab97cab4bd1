package providerfactory

import (
	"fmt"
	"log/slog"

	"parallax-hq/parallax/pkg/providers"
	"parallax-hq/parallax/pkg/providers/anthropic"
	"parallax-hq/parallax/pkg/providers/gemini"
	"parallax-hq/parallax/pkg/providers/openai"
	"parallax-hq/parallax/pkg/providers/perplexity"
)

// New creates a provider adapter for the given id.
func New(config providers.AdapterConfig) (providers.Adapter, error) {
	switch config.ID {
	case providers.IDOpenAI:
		return openai.New(config)
	case providers.IDAnthropic:
		return anthropic.New(config)
	case providers.IDPerplexity:
		return perplexity.New(config)
	case providers.IDGemini:
		return gemini.New(config)
	default:
		return nil, fmt.Errorf("unknown provider %q", config.ID)
	}
}

// BuildRegistry creates adapters for every configured provider and registers
// them in catalog order, so fan-out and stream announcements are stable
// regardless of configuration file ordering.
//
// Providers present in the catalog but absent from configs are skipped with
// a log line rather than treated as errors; a deployment may legitimately
// run with a subset of providers.
func BuildRegistry(configs map[string]providers.AdapterConfig) (*providers.Registry, error) {
	registry := providers.NewRegistry()

	for _, desc := range providers.Catalog() {
		cfg, ok := configs[desc.ID]
		if !ok {
			slog.Info("provider not configured, skipping", "provider", desc.ID)
			continue
		}
		cfg.ID = desc.ID

		adapter, err := New(cfg)
		if err != nil {
			registry.Close()
			return nil, fmt.Errorf("failed to create provider %q: %w", desc.ID, err)
		}

		if err := registry.Register(adapter); err != nil {
			registry.Close()
			return nil, err
		}
	}

	if registry.Len() == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	return registry, nil
}
