package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"parallax-hq/parallax/internal/providertest"
	"parallax-hq/parallax/pkg/providers"
)

const messagesPath = "/v1/messages"

func newTestProvider(t *testing.T, ms *providertest.MockServer) *Provider {
	t.Helper()
	p, err := New(providers.AdapterConfig{
		BaseURL: ms.URL(),
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(providers.AdapterConfig{BaseURL: "http://localhost"})
	var configErr *providers.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestGenerate(t *testing.T) {
	ms := providertest.NewMockServer()
	defer ms.Close()
	ms.SetResponse(messagesPath, providertest.MockResponse{
		StatusCode: http.StatusOK,
		Body:       providertest.AnthropicResponse("Hi there", "claude-sonnet", 10, 5),
	})

	p := newTestProvider(t, ms)
	defer p.Close()

	result := p.Generate(context.Background(), &providers.GenerateRequest{
		Prompt:       "Say hi",
		SystemPrompt: "Be terse",
		Model:        "claude-sonnet",
	})

	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if result.Content != "Hi there" {
		t.Errorf("expected content %q, got %q", "Hi there", result.Content)
	}
	if result.Usage == nil || result.Usage.InputTokens != 10 || result.Usage.OutputTokens != 5 || result.Usage.TotalTokens != 15 {
		t.Errorf("unexpected usage %+v", result.Usage)
	}

	req := ms.LastRequest()
	if got := req.Headers.Get("x-api-key"); got != "test-key" {
		t.Errorf("unexpected api key header %q", got)
	}
	if got := req.Headers.Get("anthropic-version"); got != DefaultAnthropicVersion {
		t.Errorf("unexpected version header %q", got)
	}

	var body struct {
		Model    string `json:"model"`
		System   string `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxTokens int `json:"max_tokens"`
	}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if body.System != "Be terse" {
		t.Errorf("expected system field, got %q", body.System)
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
		t.Errorf("expected a single user message, got %+v", body.Messages)
	}
	if body.MaxTokens != defaultMaxTokens {
		t.Errorf("expected default max_tokens %d, got %d", defaultMaxTokens, body.MaxTokens)
	}
}

func TestGenerateForwardsMaxTokens(t *testing.T) {
	ms := providertest.NewMockServer()
	defer ms.Close()
	ms.SetResponse(messagesPath, providertest.MockResponse{
		StatusCode: http.StatusOK,
		Body:       providertest.AnthropicResponse("ok", "claude-sonnet", 1, 1),
	})

	p := newTestProvider(t, ms)
	defer p.Close()

	if result := p.Generate(context.Background(), &providers.GenerateRequest{Prompt: "hi", MaxTokens: 256}); result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}

	var body struct {
		MaxTokens int `json:"max_tokens"`
	}
	if err := json.Unmarshal(ms.LastRequest().Body, &body); err != nil {
		t.Fatal(err)
	}
	if body.MaxTokens != 256 {
		t.Errorf("expected max_tokens 256, got %d", body.MaxTokens)
	}
}

func TestGenerateAuthError(t *testing.T) {
	ms := providertest.NewMockServer()
	defer ms.Close()
	ms.SetResponse(messagesPath, providertest.AuthError())

	p := newTestProvider(t, ms)
	defer p.Close()

	result := p.Generate(context.Background(), &providers.GenerateRequest{Prompt: "hi"})
	var authErr *providers.AuthError
	if !errors.As(result.Error, &authErr) {
		t.Fatalf("expected auth error, got %v", result.Error)
	}
	if result.Content != "" {
		t.Errorf("failed result must have empty content, got %q", result.Content)
	}
}

func TestGenerateStream(t *testing.T) {
	ms := providertest.NewMockServer()
	defer ms.Close()
	ms.SetResponse(messagesPath, providertest.MockResponse{
		StreamChunks: []string{
			providertest.AnthropicStreamEvent("message_start", map[string]any{
				"type": "message_start",
				"message": map[string]any{
					"id":    "msg_123",
					"usage": map[string]any{"input_tokens": 9, "output_tokens": 1},
				},
			}),
			providertest.AnthropicStreamEvent("content_block_delta", providertest.AnthropicContentDelta("Hel")),
			providertest.AnthropicStreamEvent("content_block_delta", providertest.AnthropicContentDelta("lo")),
			providertest.AnthropicStreamEvent("message_delta", map[string]any{
				"type":  "message_delta",
				"usage": map[string]any{"output_tokens": 6},
			}),
			providertest.AnthropicStreamEvent("message_stop", map[string]any{"type": "message_stop"}),
		},
	})

	p := newTestProvider(t, ms)
	defer p.Close()

	var content string
	var terminal *providers.StreamChunk
	for chunk := range p.GenerateStream(context.Background(), &providers.GenerateRequest{Prompt: "hi"}) {
		if chunk.Done {
			terminal = chunk
			continue
		}
		content += chunk.Content
	}

	if content != "Hello" {
		t.Errorf("expected streamed content %q, got %q", "Hello", content)
	}
	if terminal == nil {
		t.Fatal("missing terminal chunk")
	}
	if terminal.Error != nil {
		t.Errorf("unexpected stream error: %v", terminal.Error)
	}
	// Input comes from message_start, output from the later message_delta.
	if terminal.Usage == nil || terminal.Usage.InputTokens != 9 || terminal.Usage.OutputTokens != 6 || terminal.Usage.TotalTokens != 15 {
		t.Errorf("unexpected usage %+v", terminal.Usage)
	}
}

func TestGenerateStreamErrorEvent(t *testing.T) {
	ms := providertest.NewMockServer()
	defer ms.Close()
	ms.SetResponse(messagesPath, providertest.MockResponse{
		StreamChunks: []string{
			providertest.AnthropicStreamEvent("content_block_delta", providertest.AnthropicContentDelta("par")),
			providertest.AnthropicStreamEvent("error", map[string]any{
				"type": "error",
				"error": map[string]any{
					"type":    "overloaded_error",
					"message": "Overloaded: please retry later",
				},
			}),
		},
	})

	p := newTestProvider(t, ms)
	defer p.Close()

	var content string
	var terminal *providers.StreamChunk
	for chunk := range p.GenerateStream(context.Background(), &providers.GenerateRequest{Prompt: "hi"}) {
		if chunk.Done {
			terminal = chunk
			continue
		}
		content += chunk.Content
	}

	if content != "par" {
		t.Errorf("expected partial content before failure, got %q", content)
	}
	if terminal == nil {
		t.Fatal("missing terminal chunk")
	}
	var streamErr *providers.StreamError
	if !errors.As(terminal.Error, &streamErr) {
		t.Fatalf("expected stream error, got %v", terminal.Error)
	}
	// The upstream error message must survive into the normalized error.
	if streamErr.Message != "Overloaded: please retry later" {
		t.Errorf("expected upstream error message, got %q", streamErr.Message)
	}
}

func TestGenerateStreamErrorEventWithoutMessage(t *testing.T) {
	ms := providertest.NewMockServer()
	defer ms.Close()
	ms.SetResponse(messagesPath, providertest.MockResponse{
		StreamChunks: []string{
			providertest.AnthropicStreamEvent("error", map[string]any{"type": "error"}),
		},
	})

	p := newTestProvider(t, ms)
	defer p.Close()

	var terminal *providers.StreamChunk
	for chunk := range p.GenerateStream(context.Background(), &providers.GenerateRequest{Prompt: "hi"}) {
		if chunk.Done {
			terminal = chunk
		}
	}

	if terminal == nil {
		t.Fatal("missing terminal chunk")
	}
	var streamErr *providers.StreamError
	if !errors.As(terminal.Error, &streamErr) {
		t.Fatalf("expected stream error, got %v", terminal.Error)
	}
	if streamErr.Message == "" {
		t.Error("expected a fallback error message")
	}
}
