package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure independently of the transport that reports it.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUpload
	KindUnauthorized
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUpload:
		return "upload"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// StatusCode is the HTTP status a kind maps to unless the error overrides it.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the structured failure returned by the service layer.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details []string
	Err     error
}

func NewError(kind Kind, message string, details ...string) *Error {
	return &Error{
		Kind:    kind,
		Status:  kind.StatusCode(),
		Message: message,
		Details: details,
	}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithStatus overrides the status code reported for this error.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// Wrap records the underlying cause without exposing it in Message.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func ValidationError(message string, details ...string) *Error {
	return NewError(KindValidation, message, details...)
}

func ConflictError(message string) *Error {
	return NewError(KindConflict, message)
}

func UploadError(message string, cause error) *Error {
	return NewError(KindUpload, message).Wrap(cause)
}

func UnauthorizedError(message string) *Error {
	return NewError(KindUnauthorized, message)
}

func NotFoundError(message string) *Error {
	return NewError(KindNotFound, message)
}

func InternalError(cause error) *Error {
	return NewError(KindInternal, "Internal server error").Wrap(cause)
}

// AsError converts any error into a *Error. Errors that are not already
// structured are reported as internal failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return InternalError(err)
}

// KindOf returns the kind of err, or KindInternal for unstructured errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
