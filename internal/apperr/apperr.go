// Package apperr defines the failure taxonomy shared by the fulfillment
// engine: validation, state conflict, authorization, balance, and store
// failures. Handlers map these to HTTP statuses; the write protocol maps
// ErrTxConflict to a bounded retry.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrStateConflict       = errors.New("state conflict")
	ErrDuplicate           = errors.New("duplicate record")
	ErrUnauthorized        = errors.New("actor not authorized")
	ErrInsufficientBalance = errors.New("insufficient shop balance")
	ErrTxConflict          = errors.New("transaction conflict")
	ErrStore               = errors.New("store failure")
)

func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrValidation):
		return "validation"

	case errors.Is(err, ErrNotFound):
		return "not_found"

	case errors.Is(err, ErrDuplicate):
		return "duplicate"

	case errors.Is(err, ErrStateConflict):
		return "state_conflict"

	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"

	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"

	case errors.Is(err, ErrTxConflict):
		return "tx_conflict"

	default:
		return "internal"
	}
}

func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrStateConflict):
		return http.StatusConflict

	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden

	case errors.Is(err, ErrInsufficientBalance):
		return http.StatusUnprocessableEntity

	case errors.Is(err, ErrTxConflict):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
