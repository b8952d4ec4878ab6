package service

import (
	"errors"
	"fmt"
)

var (
	ErrRouteNotFound   = errors.New("route_not_found")
	ErrNoFiles         = errors.New("no_files")
	ErrTooManyFiles    = errors.New("too_many_files")
	ErrTypeNotAllowed  = errors.New("type_not_allowed")
	ErrFileTooLarge    = errors.New("file_too_large")
	ErrInvalidFileSize = errors.New("invalid_file_size")
	ErrContentMismatch = errors.New("content_mismatch")

	ErrMalformedURL = errors.New("malformed url")

	ErrProxyDisabled    = errors.New("proxy uploads are disabled")
	ErrInvalidSignature = errors.New("invalid upload signature")
	ErrTargetExpired    = errors.New("upload target expired")
	ErrLengthRequired   = errors.New("content length required")
)

// ValidationError is a request-level rejection. No backend I/O has happened when one is returned.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// Code is the machine readable reason, e.g. "too_many_files".
func (e *ValidationError) Code() string {
	return e.Kind.Error()
}

func validationErrorf(kind error, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
