package handler

import (
	"net/http"

	"github.com/mcoot/registrar/internal/api/apierr"
	"github.com/mcoot/registrar/internal/model"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeValidationFailed   = apierr.CodeValidationFailed
	CodeDuplicateEmail     = apierr.CodeDuplicateEmail
	CodeRegistrantNotFound = apierr.CodeRegistrantNotFound
	CodeSessionNotFound    = apierr.CodeSessionNotFound
	CodeWrongStep          = apierr.CodeWrongStep
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewValidationError creates a validation failure error
func NewValidationError(fields model.FieldErrors) error {
	return apierr.NewValidationError(fields)
}
