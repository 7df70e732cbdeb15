package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("job not found: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("not your job: %w", ErrForbidden), http.StatusForbidden},
		{"conflict", fmt.Errorf("already applied: %w", ErrConflict), http.StatusConflict},
		{"bad request", fmt.Errorf("student profile missing: %w", ErrBadRequest), http.StatusBadRequest},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"app error code wins", New(http.StatusTeapot, "short and stout", ErrNotFound), http.StatusTeapot},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := New(http.StatusBadRequest, "title and description required", ErrInvalidInput)

	assert.Equal(t, "title and description required", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "invalid input", New(http.StatusBadRequest, "", ErrInvalidInput).Error())
}
