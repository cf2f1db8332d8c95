package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrBelowMinimumThreshold, http.StatusBadRequest},
		{ErrMissingReference, http.StatusBadRequest},
		{ErrInvalidSignature, http.StatusUnauthorized},
		{ErrUserIDNotFound, http.StatusUnauthorized},
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyResolved, http.StatusConflict},
		{ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusForError(tc.err), "error: %v", tc.err)
	}

	// Wrapped errors keep their mapping.
	wrapped := fmt.Errorf("available balance is 3000 paise: %w", ErrInsufficientBalance)
	assert.Equal(t, http.StatusUnprocessableEntity, StatusForError(wrapped))
}
