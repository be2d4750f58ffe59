package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifiedErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("sync: %w", Storage("failed to commit", cause))

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "STORAGE_ERROR", Code(err))
	assert.Equal(t, "failed to commit", Message(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	testCases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrValidation, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{ErrInvalidDate, http.StatusUnprocessableEntity, "INVALID_DATE"},
		{ErrBatchTooLarge, http.StatusRequestEntityTooLarge, "BATCH_TOO_LARGE"},
		{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{ErrOwnership, http.StatusForbidden, "UNAUTHORIZED"},
		{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{ErrSeasonNotFound, http.StatusNotFound, "SEASON_NOT_FOUND"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			assert.Equal(t, tc.status, HTTPStatus(tc.err))
			assert.Equal(t, tc.code, Code(tc.err))
		})
	}
}

func TestMessageHidesUnclassifiedInternalErrors(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", Message(errors.New("pq: connection refused")))
	assert.Equal(t, "farm not found", Message(New(ErrNotFound, "FARM_NOT_FOUND", "farm not found")))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, ErrStorage, "X", "y"))
}
