package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure categories handlers map to HTTP
// statuses. Repositories and services wrap these with context; handlers
// branch with errors.Is.
var (
	// ErrNotFound indicates an unknown resource id
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates an ownership or visibility violation
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated indicates a missing, malformed, or expired session token
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrExchangeFailed indicates the provider rejected the authorization code
	ErrExchangeFailed = errors.New("code exchange failed")

	// ErrProfileFetchFailed indicates the remote profile could not be retrieved
	ErrProfileFetchFailed = errors.New("profile fetch failed")

	// ErrInvalidProfile indicates the provider returned a malformed profile
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrFileTooLarge indicates an upload exceeding the size cap
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedType indicates an upload with a non-media MIME type
	ErrUnsupportedType = errors.New("unsupported file type")
)

// ValidationError reports a malformed request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
