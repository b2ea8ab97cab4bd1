package anthropic

import (
	"parallax-hq/parallax/pkg/providers"
)

// Anthropic Messages API wire types.

// messagesRequest represents an Anthropic messages request.
type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// message represents a message in Anthropic format.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// contentBlock represents a content block in Anthropic format.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// messagesResponse represents an Anthropic messages response.
type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

// usage represents token usage in Anthropic format.
// Anthropic reports input and output separately; total is derived.
type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// streamEvent represents an event in Anthropic's SSE stream.
// The delta field is shared between content_block_delta (text) and
// message_delta (stop_reason) events, so both shapes live in eventDelta.
type streamEvent struct {
	Type    string            `json:"type"`
	Message *messagesResponse `json:"message,omitempty"`
	Index   int               `json:"index,omitempty"`
	Delta   *eventDelta       `json:"delta,omitempty"`
	Usage   *usage            `json:"usage,omitempty"`
	Error   *eventError       `json:"error,omitempty"`
}

// eventError is the payload of an in-stream error event.
type eventError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

// eventDelta carries the union of delta payloads across event types.
type eventDelta struct {
	Type       string `json:"type,omitempty"`
	Text       string `json:"text,omitempty"`
	StopReason string `json:"stop_reason,omitempty"`
}

// buildRequest transforms a provider-agnostic request to Anthropic format.
// The system prompt moves to the dedicated system field, and max_tokens is
// always set because the API requires it.
func buildRequest(req *providers.GenerateRequest, model string, stream bool) *messagesRequest {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	return &messagesRequest{
		Model:       model,
		Messages:    []message{{Role: "user", Content: req.Prompt}},
		System:      req.SystemPrompt,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
}

// transformResponse extracts text content and usage from a messages response.
func transformResponse(resp *messagesResponse) (string, *providers.TokenUsage) {
	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return content, &providers.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}
}
