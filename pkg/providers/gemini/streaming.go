package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"parallax-hq/parallax/pkg/providers"
)

// streamReader reads Server-Sent Events from Gemini's streamGenerateContent
// endpoint (alt=sse).
//
// Some Gemini responses repeat the full accumulated text in each event
// rather than sending a pure delta, so the reader diffs each event against
// the text it has already seen and emits only the new suffix.
type streamReader struct {
	provider *providers.HTTPProvider
	resp     io.ReadCloser
	scanner  *bufio.Scanner
	closed   bool

	seen  string
	usage *usageMetadata
}

// newStreamReader opens the streaming request and returns a reader over its
// SSE body.
func newStreamReader(ctx context.Context, provider *providers.HTTPProvider, url string, req *generateRequest, headers map[string]string) (*streamReader, error) {
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

// Usage returns the usage metadata from the last event that carried it,
// or nil.
func (s *streamReader) Usage() *providers.TokenUsage {
	return transformUsage(s.usage)
}

// Read reads the next content chunk from the stream.
// Returns (nil, nil) when the stream ends normally.
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

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, &providers.StreamError{
					Provider: s.provider.ID(),
					Message:  "failed to read stream",
					Cause:    err,
				}
			}
			return nil, nil
		}

		line := s.scanner.Text()
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		var event generateResponse
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return nil, &providers.ParseError{
				Provider:    s.provider.ID(),
				RawResponse: data,
				Cause:       fmt.Errorf("failed to parse stream event: %w", err),
			}
		}

		if event.UsageMetadata != nil {
			s.usage = event.UsageMetadata
		}

		delta := s.delta(candidateText(&event))
		if delta == "" {
			continue
		}

		return &providers.StreamChunk{Content: delta}, nil
	}
}

// delta returns the newly generated suffix of text, handling both snapshot
// and incremental event shapes.
func (s *streamReader) delta(text string) string {
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, s.seen) {
		delta := text[len(s.seen):]
		s.seen = text
		return delta
	}
	s.seen += text
	return text
}

// Close closes the stream and releases resources.
func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Close()
}
