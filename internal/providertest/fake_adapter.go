package providertest

import (
	"context"
	"time"

	"parallax-hq/parallax/pkg/providers"
)

// FakeAdapter is a scriptable in-memory providers.Adapter for engine and
// handler tests.
type FakeAdapter struct {
	// Desc is the descriptor returned by Descriptor()
	Desc providers.Descriptor

	// Result is returned by Generate. Provider/Model/Duration are filled
	// in when empty.
	Result *providers.GenerateResult

	// Chunks are emitted by GenerateStream before the terminal chunk
	Chunks []string

	// StreamUsage is carried on the terminal chunk
	StreamUsage *providers.TokenUsage

	// StreamErr is carried on the terminal chunk
	StreamErr error

	// Delay is applied before Generate returns and between stream chunks
	Delay time.Duration

	// PanicOnGenerate makes Generate panic, for fault-isolation tests
	PanicOnGenerate bool
}

// NewFakeAdapter creates a fake adapter that succeeds with the given
// content.
func NewFakeAdapter(id, content string) *FakeAdapter {
	return &FakeAdapter{
		Desc: providers.Descriptor{
			ID:           id,
			Name:         id,
			Models:       []string{id + "-model"},
			DefaultModel: id + "-model",
		},
		Result: &providers.GenerateResult{
			Content: content,
			Usage:   &providers.TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
		},
	}
}

// ID implements providers.Adapter.
func (f *FakeAdapter) ID() string { return f.Desc.ID }

// Descriptor implements providers.Adapter.
func (f *FakeAdapter) Descriptor() providers.Descriptor { return f.Desc }

// Generate implements providers.Adapter.
func (f *FakeAdapter) Generate(ctx context.Context, req *providers.GenerateRequest) *providers.GenerateResult {
	if f.PanicOnGenerate {
		panic("fake adapter exploded")
	}
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
		}
	}

	res := *f.Result
	if res.Provider == "" {
		res.Provider = f.Desc.ID
	}
	if res.Model == "" {
		res.Model = f.Desc.ResolveModel(req.Model)
	}
	if res.Duration == 0 {
		res.Duration = time.Millisecond
	}
	return &res
}

// GenerateStream implements providers.Adapter.
func (f *FakeAdapter) GenerateStream(ctx context.Context, req *providers.GenerateRequest) <-chan *providers.StreamChunk {
	out := make(chan *providers.StreamChunk, providers.StreamBufferSize)
	go func() {
		defer close(out)
		for _, content := range f.Chunks {
			if f.Delay > 0 {
				time.Sleep(f.Delay)
			}
			select {
			case out <- &providers.StreamChunk{Content: content}:
			case <-ctx.Done():
				out <- &providers.StreamChunk{Done: true, Error: ctx.Err()}
				return
			}
		}
		out <- &providers.StreamChunk{Done: true, Usage: f.StreamUsage, Error: f.StreamErr}
	}()
	return out
}

// Close implements providers.Adapter.
func (f *FakeAdapter) Close() error { return nil }
