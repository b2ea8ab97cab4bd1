// Parallax is a multi-provider LLM comparison server.
//
// It fans one prompt out to several LLM providers concurrently, normalizes
// their responses into a uniform shape with latency, token, and cost
// metrics, and persists the results under conversations. Responses are
// available side-by-side in one payload or interleaved live over a
// server-sent-events stream.
//
// Usage:
//
//	# Start the server with default configuration
//	parallax run
//
//	# Start with a custom configuration file
//	parallax run --config /path/to/config.yaml
//
//	# Validate a configuration file
//	parallax validate --config /path/to/config.yaml
//
//	# Show version information
//	parallax version
package main

func main() {
	Execute()
}
