// Package perplexity implements the provider adapter for Perplexity's
// OpenAI-compatible API.
package perplexity
