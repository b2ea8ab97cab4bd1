package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"parallax-hq/parallax/pkg/providers"
)

// streamReader reads Server-Sent Events (SSE) from Anthropic's streaming API.
//
// Anthropic streams typed events rather than raw deltas: message_start
// carries the input token count, content_block_delta events carry text, and
// message_delta near the end carries the output token count. The reader
// accumulates usage across events and exposes it via Usage().
type streamReader struct {
	provider *providers.HTTPProvider
	resp     io.ReadCloser
	scanner  *bufio.Scanner
	closed   bool

	inputTokens  int
	outputTokens int
}

// newStreamReader opens the streaming request and returns a reader over its
// SSE body.
func newStreamReader(ctx context.Context, provider *providers.HTTPProvider, url string, req *messagesRequest, headers map[string]string) (*streamReader, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := provider.DoRequest(ctx, "POST", url, bodyBytes, headers)
	if err != nil {
		return nil, err
	}

	return &streamReader{
		provider: provider,
		resp:     resp.Body,
		scanner:  bufio.NewScanner(resp.Body),
	}, nil
}

// Usage returns the token usage accumulated so far, or nil if the stream
// reported none.
func (s *streamReader) Usage() *providers.TokenUsage {
	if s.inputTokens == 0 && s.outputTokens == 0 {
		return nil
	}
	return &providers.TokenUsage{
		InputTokens:  s.inputTokens,
		OutputTokens: s.outputTokens,
		TotalTokens:  s.inputTokens + s.outputTokens,
	}
}

// Read reads the next content chunk from the stream.
// Returns (nil, nil) when the stream ends normally (message_stop or EOF).
func (s *streamReader) Read(ctx context.Context) (*providers.StreamChunk, error) {
	if s.closed {
		return nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		event, err := s.readEvent()
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}
		if event == nil {
			continue
		}

		switch event.Type {
		case "message_start":
			if event.Message != nil {
				s.inputTokens = event.Message.Usage.InputTokens
				s.outputTokens = event.Message.Usage.OutputTokens
			}

		case "content_block_delta":
			if event.Delta != nil && event.Delta.Text != "" {
				return &providers.StreamChunk{Content: event.Delta.Text}, nil
			}

		case "message_delta":
			if event.Usage != nil {
				s.outputTokens = event.Usage.OutputTokens
			}

		case "message_stop":
			return nil, nil

		case "content_block_start", "content_block_stop", "ping":
			// No content to emit

		case "error":
			message := "upstream stream error event"
			if event.Error != nil && event.Error.Message != "" {
				message = event.Error.Message
			}
			return nil, &providers.StreamError{
				Provider: s.provider.ID(),
				Message:  message,
			}
		}
	}
}

// readEvent reads a complete SSE event (event: and data: lines up to the
// blank separator).
func (s *streamReader) readEvent() (*streamEvent, error) {
	var eventType string
	var dataLines []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		// Empty line marks end of event
		if line == "" {
			if eventType != "" || len(dataLines) > 0 {
				break
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		}
		// Ignore other SSE fields (id, retry)
	}

	if err := s.scanner.Err(); err != nil {
		return nil, &providers.StreamError{
			Provider: s.provider.ID(),
			Message:  "failed to read stream",
			Cause:    err,
		}
	}

	if eventType == "" && len(dataLines) == 0 {
		return nil, io.EOF
	}

	var event streamEvent
	if len(dataLines) > 0 {
		data := strings.Join(dataLines, "\n")
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return nil, &providers.ParseError{
				Provider:    s.provider.ID(),
				RawResponse: data,
				Cause:       fmt.Errorf("failed to parse stream event: %w", err),
			}
		}
	}
	if eventType != "" && event.Type == "" {
		event.Type = eventType
	}

	return &event, nil
}

// Close closes the stream and releases resources.
func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Close()
}
