package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidEmailDomain is returned when the email is outside the allowed domain.
	ErrInvalidEmailDomain = errors.New("email domain not allowed")
	// ErrPasswordMismatch is returned when a new password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrNotAllowedToRegister is returned when no provisioned account exists for the email.
	ErrNotAllowedToRegister = errors.New("user is not allowed to register")
	// ErrEmailNotFound is returned by password reset for an unknown email.
	ErrEmailNotFound = errors.New("email not found")
	// ErrAlreadyRegistered is returned when the account already has a password.
	ErrAlreadyRegistered = errors.New("email already registered")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrStoreUnavailable is returned when the credential store cannot be reached.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrPasswordUpdateFailed is returned when storing a new hash did not change a row.
	ErrPasswordUpdateFailed = errors.New("password update failed")
	// ErrUnauthenticated is returned when a request carries no valid session.
	ErrUnauthenticated = errors.New("not authenticated")
)

// Kind classifies an error for presentation.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindDatabase
	KindAuthentication
)

// KindOf returns the class of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidEmailDomain), errors.Is(err, ErrPasswordMismatch):
		return KindValidation
	case errors.Is(err, ErrNotAllowedToRegister), errors.Is(err, ErrEmailNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyRegistered):
		return KindConflict
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrPasswordUpdateFailed):
		return KindDatabase
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthenticated):
		return KindAuthentication
	default:
		return KindInternal
	}
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

// MapErrorToHTTP maps domain errors to HTTP errors. Database failures never
// expose their cause.
func MapErrorToHTTP(err error) *HTTPError {
	switch KindOf(err) {
	case KindValidation:
		return NewHTTPError(http.StatusBadRequest, rootMessage(err), "VALIDATION_FAILED")
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, rootMessage(err), "NOT_FOUND")
	case KindConflict:
		return NewHTTPError(http.StatusConflict, rootMessage(err), "CONFLICT")
	case KindAuthentication:
		return NewHTTPError(http.StatusUnauthorized, rootMessage(err), "UNAUTHENTICATED")
	case KindDatabase:
		return NewHTTPError(http.StatusServiceUnavailable, "service temporarily unavailable", "DATABASE_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// rootMessage returns the message of the sentinel err wraps, so wrapping
// context added by services stays server-side.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		ErrInvalidEmailDomain, ErrPasswordMismatch, ErrNotAllowedToRegister,
		ErrEmailNotFound, ErrAlreadyRegistered, ErrInvalidCredentials, ErrUnauthenticated,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
