// Package gemini implements the provider adapter for Google's Generative
// Language API (Gemini), including SSE streaming via streamGenerateContent.
package gemini
