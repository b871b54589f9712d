package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors forming the application error taxonomy. Services wrap these
// with fmt.Errorf("%w: ..."), handlers map them to HTTP statuses via Status.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Status maps a taxonomy error to its HTTP status code. Unrecognized errors
// map to 500 so that unexpected failures are never mistaken for client faults.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
