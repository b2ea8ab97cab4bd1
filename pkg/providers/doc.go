// Package providers defines the provider adapter contract and shared
// infrastructure for talking to LLM APIs.
//
// Each supported provider (OpenAI, Anthropic, Perplexity, Gemini) lives in
// its own subpackage and embeds HTTPProvider for pooled HTTP transport and
// typed error normalization. The Adapter interface guarantees settled
// outcomes: Generate never returns a Go error, and GenerateStream always
// delivers exactly one terminal chunk, so orchestration code composes
// adapters without per-provider error plumbing.
package providers
