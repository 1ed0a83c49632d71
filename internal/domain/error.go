package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMissingCredential = errors.New("api key is missing")
	ErrUnauthenticated   = errors.New("api key rejected by backend")
	ErrServiceError      = errors.New("backend service error")
	ErrRateLimited       = errors.New("too many requests")
	ErrLockBusy          = errors.New("session is locked")
)

// ValidationError is a field-level rejection returned by the backend (HTTP 400).
// Message is the first server-supplied message, or empty when the body had none.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "validation failed"
	}
	return "validation failed: " + e.Message
}

// ErrorKind classifies failures for display purposes.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindMissingCredential ErrorKind = "missing_credential"
	KindUnauthenticated   ErrorKind = "unauthenticated"
	KindServiceError      ErrorKind = "service_error"
	KindValidation        ErrorKind = "validation"
)

// KindOf maps an error to its kind. Unknown errors count as service errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.As(err, &verr):
		return KindValidation
	default:
		return KindServiceError
	}
}
