package providers

import (
	"errors"
	"fmt"
)

// Registry holds the set of active adapters in a fixed, deterministic order.
//
// Order matters: fan-out results are returned in registration order, and
// stream announcements list providers in registration order. The factory
// registers adapters in catalog order, so clients see a stable sequence
// across requests and restarts.
//
// A Registry is built once at startup and read-only afterwards, so no
// locking is needed on the read paths.
type Registry struct {
	order    []string
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// Register adds an adapter. Registration order is preserved.
func (r *Registry) Register(a Adapter) error {
	id := a.ID()
	if id == "" {
		return errors.New("adapter has empty id")
	}
	if _, exists := r.adapters[id]; exists {
		return fmt.Errorf("adapter %q already registered", id)
	}

	r.adapters[id] = a
	r.order = append(r.order, id)
	return nil
}

// Get returns the adapter for a provider id.
func (r *Registry) Get(id string) (Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// IDs returns the provider ids in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Adapters returns the adapters in registration order.
func (r *Registry) Adapters() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.adapters[id])
	}
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	return len(r.order)
}

// Close closes all registered adapters, returning the first error seen.
func (r *Registry) Close() error {
	var firstErr error
	for _, id := range r.order {
		if err := r.adapters[id].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
