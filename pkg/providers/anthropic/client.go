package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"parallax-hq/parallax/pkg/providers"
)

// Provider is the Anthropic provider adapter.
// It implements the providers.Adapter interface for Anthropic's Messages API.
type Provider struct {
	*providers.HTTPProvider

	descriptor providers.Descriptor
}

const (
	// DefaultAnthropicVersion is the API version to use
	DefaultAnthropicVersion = "2023-06-01"

	// defaultMaxTokens is sent when the request does not set a limit.
	// The Messages API requires max_tokens on every request.
	defaultMaxTokens = 4096
)

// New creates a new Anthropic provider instance.
func New(config providers.AdapterConfig) (*Provider, error) {
	if config.ID == "" {
		config.ID = providers.IDAnthropic
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com"
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.ID,
			Field:    "api_key",
			Message:  "API key is required for Anthropic",
		}
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	descriptor, ok := providers.Lookup(config.ID)
	if !ok {
		descriptor = providers.Descriptor{ID: config.ID, Name: config.ID}
	}

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
		descriptor:   descriptor,
	}

	slog.Info("Anthropic provider initialized",
		"provider", config.ID,
		"base_url", config.BaseURL,
	)

	return p, nil
}

// Descriptor returns the catalog descriptor for this provider.
func (p *Provider) Descriptor() providers.Descriptor {
	return p.descriptor
}

// Generate sends a completion request and blocks until it settles.
func (p *Provider) Generate(ctx context.Context, req *providers.GenerateRequest) *providers.GenerateResult {
	start := time.Now()
	model := p.descriptor.ResolveModel(req.Model)

	result := &providers.GenerateResult{
		Provider: p.ID(),
		Model:    model,
	}

	var resp messagesResponse
	err := p.DoJSONRequest(ctx, "POST", p.messagesURL(), buildRequest(req, model, false), &resp, p.headers(false))
	if err != nil {
		result.Duration = time.Since(start)
		result.Error = err
		return result
	}

	content, usage := transformResponse(&resp)
	result.Duration = time.Since(start)
	result.Content = content
	result.Usage = usage

	slog.Debug("completion request succeeded",
		"provider", p.ID(),
		"model", model,
		"tokens", usage.TotalTokens,
	)

	return result
}

// GenerateStream sends a streaming completion request.
// The returned channel always yields exactly one terminal chunk before closing.
func (p *Provider) GenerateStream(ctx context.Context, req *providers.GenerateRequest) <-chan *providers.StreamChunk {
	chunks := make(chan *providers.StreamChunk, providers.StreamBufferSize)
	model := p.descriptor.ResolveModel(req.Model)

	stream, err := newStreamReader(ctx, p.HTTPProvider, p.messagesURL(), buildRequest(req, model, true), p.headers(true))
	if err != nil {
		chunks <- &providers.StreamChunk{Done: true, Error: err}
		close(chunks)
		return chunks
	}

	go func() {
		defer close(chunks)
		defer stream.Close()

		for {
			chunk, err := stream.Read(ctx)
			if err != nil {
				chunks <- &providers.StreamChunk{Done: true, Usage: stream.Usage(), Error: err}
				return
			}
			if chunk == nil {
				// message_stop reached
				chunks <- &providers.StreamChunk{Done: true, Usage: stream.Usage()}
				return
			}

			select {
			case chunks <- chunk:
			case <-ctx.Done():
				chunks <- &providers.StreamChunk{Done: true, Usage: stream.Usage(), Error: ctx.Err()}
				return
			}
		}
	}()

	return chunks
}

func (p *Provider) messagesURL() string {
	return fmt.Sprintf("%s/v1/messages", p.Config().BaseURL)
}

func (p *Provider) headers(stream bool) map[string]string {
	h := map[string]string{
		"x-api-key":         p.Config().APIKey,
		"anthropic-version": DefaultAnthropicVersion,
		"Content-Type":      "application/json",
	}
	if stream {
		h["Accept"] = "text/event-stream"
	}
	return h
}
