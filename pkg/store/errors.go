package store

import "fmt"

// NotFoundError indicates a row does not exist.
type NotFoundError struct {
	// Kind is the entity kind ("conversation", "query", "response")
	Kind string

	// ID is the identifier that was looked up
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// StorageError wraps a low-level storage failure with its operation.
type StorageError struct {
	// Backend is the storage backend ("sqlite", "memory")
	Backend string

	// Op is the operation that failed
	Op string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %s failed: %v", e.Backend, e.Op, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, op string, cause error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Cause: cause}
}
