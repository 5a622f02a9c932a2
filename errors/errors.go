// Package errors defines the error taxonomy shared by every layer:
// validation faults, missing entities, authentication faults, and a
// single mapping to HTTP status codes for the transport.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrChatAlreadyExists  = fmt.Errorf("chat already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
)

// ValidationError marks malformed or incomplete caller input.
// Never retried automatically.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string { return e.Reason }

func NewValidation(format string, args ...any) error {
	return ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v ValidationError
	return stderrors.As(err, &v)
}

// NotFoundError marks a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NewNotFound(entity, id string) error {
	return NotFoundError{Entity: entity, ID: id}
}

func IsNotFound(err error) bool {
	var n NotFoundError
	return stderrors.As(err, &n)
}

// AuthError marks a missing, invalid, or expired credential.
type AuthError struct {
	Reason string
}

func (e AuthError) Error() string { return e.Reason }

func NewAuth(reason string) error { return AuthError{Reason: reason} }

// HTTPStatus maps an error from any layer to the status the transport
// should answer with. Unknown errors are server faults.
func HTTPStatus(err error) int {
	var (
		validation ValidationError
		notFound   NotFoundError
		auth       AuthError
	)
	switch {
	case stderrors.As(err, &validation):
		return http.StatusBadRequest
	case stderrors.As(err, &notFound):
		return http.StatusNotFound
	case stderrors.As(err, &auth),
		stderrors.Is(err, ErrInvalidCredentials),
		stderrors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrUserAlreadyExists),
		stderrors.Is(err, ErrChatAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
