package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when a uniqueness constraint is violated.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrRoleMismatch is returned when a referenced user is absent or holds another role.
	ErrRoleMismatch = errors.New("role mismatch")
	// ErrInvalidTransition is returned when an enrollment cannot leave its current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrValidation is returned when input values are out of range.
	ErrValidation = errors.New("validation failed")
)

// DomainError pairs an error kind with a caller-facing message.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

// Domain builds an error of the given kind carrying msg.
func Domain(kind error, msg string) error {
	return &DomainError{Kind: kind, Message: msg}
}

// NotFound is shorthand for Domain(ErrNotFound, msg).
func NotFound(msg string) error {
	return Domain(ErrNotFound, msg)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrDuplicateKey):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE_KEY")
	case errors.Is(err, ErrRoleMismatch):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ROLE_MISMATCH")
	case errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusConflict, err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
