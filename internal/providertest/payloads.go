package providertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OpenAIResponse builds a mock OpenAI chat completion payload.
func OpenAIResponse(content, model string, inputTokens, outputTokens int) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     inputTokens,
			"completion_tokens": outputTokens,
			"total_tokens":      inputTokens + outputTokens,
		},
	}
}

// OpenAIStreamChunk builds one mock OpenAI streaming chunk.
func OpenAIStreamChunk(delta string) string {
	chunk := map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"model":   "gpt-4o",
		"choices": []map[string]any{
			{
				"index": 0,
				"delta": map[string]any{"content": delta},
			},
		},
	}
	data, _ := json.Marshal(chunk)
	return string(data)
}

// OpenAIStreamUsage builds the final usage-bearing chunk sent when
// stream_options.include_usage is set.
func OpenAIStreamUsage(inputTokens, outputTokens int) string {
	chunk := map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"model":   "gpt-4o",
		"choices": []map[string]any{},
		"usage": map[string]any{
			"prompt_tokens":     inputTokens,
			"completion_tokens": outputTokens,
			"total_tokens":      inputTokens + outputTokens,
		},
	}
	data, _ := json.Marshal(chunk)
	return string(data)
}

// AnthropicResponse builds a mock Anthropic messages payload.
func AnthropicResponse(content, model string, inputTokens, outputTokens int) map[string]any {
	return map[string]any{
		"id":   "msg_123",
		"type": "message",
		"role": "assistant",
		"content": []map[string]any{
			{"type": "text", "text": content},
		},
		"model":       model,
		"stop_reason": "end_turn",
		"usage": map[string]any{
			"input_tokens":  inputTokens,
			"output_tokens": outputTokens,
		},
	}
}

// AnthropicStreamEvent builds one mock Anthropic SSE event with its
// event/data framing.
func AnthropicStreamEvent(eventType string, data any) string {
	payload, _ := json.Marshal(data)
	return fmt.Sprintf("event: %s\ndata: %s\n", eventType, payload)
}

// AnthropicContentDelta builds a content_block_delta event payload.
func AnthropicContentDelta(text string) map[string]any {
	return map[string]any{
		"type":  "content_block_delta",
		"index": 0,
		"delta": map[string]any{"type": "text_delta", "text": text},
	}
}

// GeminiResponse builds a mock Gemini generateContent payload.
func GeminiResponse(content, model string, inputTokens, outputTokens int) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": content}},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     inputTokens,
			"candidatesTokenCount": outputTokens,
			"totalTokenCount":      inputTokens + outputTokens,
		},
		"modelVersion": model,
	}
}

// GeminiStreamChunk builds one mock Gemini SSE chunk. Passing usage token
// counts attaches usageMetadata; use -1 to omit it.
func GeminiStreamChunk(text string, inputTokens, outputTokens int) string {
	chunk := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
			},
		},
	}
	if inputTokens >= 0 {
		chunk["usageMetadata"] = map[string]any{
			"promptTokenCount":     inputTokens,
			"candidatesTokenCount": outputTokens,
			"totalTokenCount":      inputTokens + outputTokens,
		}
	}
	data, _ := json.Marshal(chunk)
	return string(data)
}

// ErrorResponse builds a mock provider error payload.
func ErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]any{
			"error": map[string]any{
				"message": message,
				"type":    "invalid_request_error",
				"code":    statusCode,
			},
		},
	}
}

// AuthError builds a 401 response.
func AuthError() MockResponse {
	return ErrorResponse(http.StatusUnauthorized, "Invalid API key")
}

// RateLimitError builds a 429 response with a Retry-After header.
func RateLimitError(retryAfter int) MockResponse {
	response := ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded")
	response.Headers = map[string]string{
		"Retry-After": fmt.Sprintf("%d", retryAfter),
	}
	return response
}

// ServerError builds a 500 response.
func ServerError() MockResponse {
	return ErrorResponse(http.StatusInternalServerError, "Internal server error")
}
