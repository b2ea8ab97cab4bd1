// Package server wires the HTTP listener: route table, middleware chain,
// and graceful shutdown.
package server
