package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"parallax-hq/parallax/pkg/providers"
)

// Provider is the Google Gemini provider adapter.
// It implements the providers.Adapter interface for the Generative Language
// API (generateContent and streamGenerateContent).
type Provider struct {
	*providers.HTTPProvider

	descriptor providers.Descriptor
}

// New creates a new Gemini provider instance.
func New(config providers.AdapterConfig) (*Provider, error) {
	if config.ID == "" {
		config.ID = providers.IDGemini
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.ID,
			Field:    "api_key",
			Message:  "API key is required for Gemini",
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

	slog.Info("Gemini provider initialized",
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

	url := fmt.Sprintf("%s/models/%s:generateContent", p.Config().BaseURL, model)

	var resp generateResponse
	err := p.DoJSONRequest(ctx, "POST", url, buildRequest(req), &resp, p.headers())
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}

	// A 200 with no candidates (safety block, empty generation) is a
	// failed attempt, not an empty success.
	if len(resp.Candidates) == 0 {
		result.Error = &providers.ParseError{
			Provider: p.ID(),
			Cause:    fmt.Errorf("no candidates in response"),
		}
		return result
	}

	result.Content = candidateText(&resp)
	result.Usage = transformUsage(resp.UsageMetadata)

	slog.Debug("completion request succeeded",
		"provider", p.ID(),
		"model", model,
	)

	return result
}

// GenerateStream sends a streaming completion request.
// The returned channel always yields exactly one terminal chunk before closing.
func (p *Provider) GenerateStream(ctx context.Context, req *providers.GenerateRequest) <-chan *providers.StreamChunk {
	chunks := make(chan *providers.StreamChunk, providers.StreamBufferSize)
	model := p.descriptor.ResolveModel(req.Model)

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", p.Config().BaseURL, model)

	stream, err := newStreamReader(ctx, p.HTTPProvider, url, buildRequest(req), p.headers())
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
				chunks <- &providers.StreamChunk{Done: true, Usage: stream.Usage()}
				return
			}
			if chunk.Content == "" {
				continue
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

func (p *Provider) headers() map[string]string {
	return map[string]string{
		"x-goog-api-key": p.Config().APIKey,
		"Content-Type":   "application/json",
	}
}
