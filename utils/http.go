package utils

import (
	"errors"
	"net/http"
)

// StatusForError maps a domain error to the HTTP status controllers respond
// with. Unknown errors map to 500.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrBelowMinimumThreshold),
		errors.Is(err, ErrMissingReference):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserIDNotFound), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
