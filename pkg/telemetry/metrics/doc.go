// Package metrics exposes Prometheus instrumentation for HTTP traffic,
// provider calls, streaming sessions and estimated cost.
package metrics
