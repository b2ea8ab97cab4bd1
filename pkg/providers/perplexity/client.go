package perplexity

import (
	"log/slog"

	"parallax-hq/parallax/pkg/providers"
	"parallax-hq/parallax/pkg/providers/openai"
)

// Provider is the Perplexity provider adapter.
//
// Perplexity implements the OpenAI Chat Completions wire format, so this
// adapter reuses the OpenAI adapter with Perplexity's base URL and catalog
// descriptor.
type Provider struct {
	*openai.Provider
}

// New creates a new Perplexity provider instance.
func New(config providers.AdapterConfig) (*Provider, error) {
	if config.ID == "" {
		config.ID = providers.IDPerplexity
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.perplexity.ai"
	}
	if config.CompletionsPath == "" {
		// Perplexity serves the OpenAI format without the /v1 prefix
		config.CompletionsPath = "/chat/completions"
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.ID,
			Field:    "api_key",
			Message:  "API key is required for Perplexity",
		}
	}

	inner, err := openai.New(config)
	if err != nil {
		return nil, err
	}

	slog.Info("Perplexity provider initialized",
		"provider", config.ID,
		"base_url", config.BaseURL,
	)

	return &Provider{Provider: inner}, nil
}
