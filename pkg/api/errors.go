package api

import (
	"errors"
	"net/http"

	"parallax-hq/parallax/pkg/providers"
	"parallax-hq/parallax/pkg/store"
)

// Error type strings used in error response envelopes.
const (
	ErrorTypeInvalidRequest = "invalid_request"
	ErrorTypeUnauthorized   = "unauthorized"
	ErrorTypeNotFound       = "not_found"
	ErrorTypeInternal       = "internal_error"
)

// ErrorDetail is the payload inside an error envelope.
type ErrorDetail struct {
	// Message is the human-readable error description
	Message string `json:"message"`

	// Type categorizes the error
	Type string `json:"type"`
}

// ErrorResponse is the uniform error envelope returned by all endpoints.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// NewErrorResponse builds an error envelope.
func NewErrorResponse(errorType, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Message: message, Type: errorType}}
}

// HandleError maps an internal error to an HTTP status code and envelope.
// Unknown errors collapse to a generic 500 so internal detail never reaches
// the client.
func HandleError(err error) (int, *ErrorResponse) {
	var validationErr *providers.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, NewErrorResponse(ErrorTypeInvalidRequest, validationErr.Error())
	}

	var notFoundErr *store.NotFoundError
	if errors.As(err, &notFoundErr) {
		return http.StatusNotFound, NewErrorResponse(ErrorTypeNotFound, notFoundErr.Error())
	}

	var badRequestErr *RequestError
	if errors.As(err, &badRequestErr) {
		return http.StatusBadRequest, NewErrorResponse(ErrorTypeInvalidRequest, badRequestErr.Error())
	}

	return http.StatusInternalServerError,
		NewErrorResponse(ErrorTypeInternal, "an internal error occurred")
}
