// Package openai implements the provider adapter for OpenAI's
// Chat Completions API, including SSE streaming.
package openai
