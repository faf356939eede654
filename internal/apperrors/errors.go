// Package apperrors defines the failure taxonomy shared by services and HTTP handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports a malformed or missing request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AuthenticationError reports a request without a verified identity.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return "authentication required: " + e.Reason
}

// NotFoundError reports a resource that does not exist, most often an identity
// that has not been materialized as an account yet.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// PersistenceError wraps a store read or write failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// UnavailableError reports an optional dependency that is not configured or
// is refusing work right now.
type UnavailableError struct {
	Service string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return e.Service + " is unavailable"
	}
	return fmt.Sprintf("%s is unavailable: %v", e.Service, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable returns an *UnavailableError.
func Unavailable(service string, err error) error {
	return &UnavailableError{Service: service, Err: err}
}

// Validation returns a *ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFound returns a *NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// Persistence wraps err as a *PersistenceError. A nil err stays nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// HTTPStatus maps an error to the status code a handler should answer with.
// Anything outside the taxonomy is treated as an internal error.
func HTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		authErr       *AuthenticationError
		notFoundErr   *NotFoundError
		unavailErr    *UnavailableError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &unavailErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Kind returns the short error name used in JSON error payloads.
func Kind(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	default:
		return "internal_error"
	}
}

// PublicMessage returns a message safe to show clients. Internal failures are
// reduced to a generic string and unavailable services drop their cause.
func PublicMessage(err error) string {
	var unavailErr *UnavailableError
	switch {
	case HTTPStatus(err) == http.StatusInternalServerError:
		return "An internal error occurred"
	case errors.As(err, &unavailErr):
		return unavailErr.Service + " is unavailable"
	}
	return err.Error()
}
