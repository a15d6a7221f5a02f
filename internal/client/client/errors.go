package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every error returned by HTTPClient matches exactly one of
// them with errors.Is.
var (
	ErrNetwork        = errors.New("network failure")
	ErrAuthRequired   = errors.New("authentication required")
	ErrValidation     = errors.New("validation rejected")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrServer         = errors.New("server error")
	ErrTransferFailed = errors.New("transfer failed")
)

// APIError describes a failed call. Message is the backend's human-readable
// explanation when it sent one.
type APIError struct {
	Kind    error
	Status  int
	Message string
	Method  string
	Path    string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, http.StatusText(e.Status))
	}
	return e.Kind.Error()
}

func (e *APIError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// kindForStatus maps a non-2xx status to an error kind.
func kindForStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return ErrAuthRequired
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return ErrServer
	default:
		return ErrValidation
	}
}

func validationError(msg string) error {
	return &APIError{Kind: ErrValidation, Message: msg}
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}
