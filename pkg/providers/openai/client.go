package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"parallax-hq/parallax/pkg/providers"
)

// Provider is the OpenAI provider adapter.
// It implements the providers.Adapter interface for the Chat Completions API.
type Provider struct {
	*providers.HTTPProvider

	descriptor providers.Descriptor
}

// New creates a new OpenAI provider instance.
func New(config providers.AdapterConfig) (*Provider, error) {
	if config.ID == "" {
		config.ID = providers.IDOpenAI
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com"
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.ID,
			Field:    "api_key",
			Message:  "API key is required for OpenAI",
		}
	}
	if config.CompletionsPath == "" {
		config.CompletionsPath = "/v1/chat/completions"
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

	slog.Info("OpenAI provider initialized",
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

	var resp chatResponse
	err := p.DoJSONRequest(ctx, "POST", p.completionsURL(), p.buildRequest(req, model, false), &resp, p.headers())
	if err != nil {
		result.Duration = time.Since(start)
		result.Error = err
		return result
	}

	content, usage, err := transformResponse(&resp)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = &providers.ParseError{Provider: p.ID(), Cause: err}
		return result
	}

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

	chatReq := p.buildRequest(req, model, true)

	stream, err := newStreamReader(ctx, p.HTTPProvider, p.completionsURL(), chatReq, p.headers())
	if err != nil {
		chunks <- &providers.StreamChunk{Done: true, Error: err}
		close(chunks)
		return chunks
	}

	go func() {
		defer close(chunks)
		defer stream.Close()

		var usage *providers.TokenUsage
		for {
			chunk, err := stream.Read(ctx)
			if err != nil {
				chunks <- &providers.StreamChunk{Done: true, Usage: usage, Error: err}
				return
			}
			if chunk == nil {
				// Stream ended normally ([DONE] sentinel)
				chunks <- &providers.StreamChunk{Done: true, Usage: usage}
				return
			}
			if chunk.Usage != nil {
				usage = chunk.Usage
			}
			if chunk.Content == "" {
				continue
			}

			select {
			case chunks <- chunk:
			case <-ctx.Done():
				chunks <- &providers.StreamChunk{Done: true, Usage: usage, Error: ctx.Err()}
				return
			}
		}
	}()

	return chunks
}

func (p *Provider) completionsURL() string {
	return fmt.Sprintf("%s%s", p.Config().BaseURL, p.Config().CompletionsPath)
}

func (p *Provider) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + p.Config().APIKey,
		"Content-Type":  "application/json",
	}
}

// buildRequest transforms a provider-agnostic request into the Chat
// Completions wire format. System prompts become a leading system message.
func (p *Provider) buildRequest(req *providers.GenerateRequest, model string, stream bool) *chatRequest {
	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	out := &chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
	if stream {
		// Ask for a usage frame on the final chunk so token counts survive streaming
		out.StreamOptions = &streamOptions{IncludeUsage: true}
	}
	return out
}
