package httperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// NotFoundError: unknown product/order/supplier/user id
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidStateError: illegal order status transition
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

func InvalidState(format string, args ...any) error {
	return &InvalidStateError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError: malformed quantity, price or payload
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError: duplicate identity on create
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ExternalServiceError: AI provider call failed (network, auth, malformed response)
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func External(service string, err error) error {
	return &ExternalServiceError{Service: service, Err: err}
}

// Status maps a domain error to its HTTP status code. The second return is
// false for errors outside the taxonomy.
func Status(err error) (int, bool) {
	var (
		notFound *NotFoundError
		state    *InvalidStateError
		invalid  *ValidationError
		conflict *ConflictError
		external *ExternalServiceError
	)
	switch {
	case errors.As(err, &notFound):
		return fiber.StatusNotFound, true
	case errors.As(err, &state):
		return fiber.StatusConflict, true
	case errors.As(err, &invalid):
		return fiber.StatusBadRequest, true
	case errors.As(err, &conflict):
		return fiber.StatusConflict, true
	case errors.As(err, &external):
		return fiber.StatusBadGateway, true
	}
	return 0, false
}
