package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NotFound("highlight", "h1"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get: %w", NotFound("highlight", "h1")), http.StatusNotFound},
		{"validation", Invalid("limit", "must be at most 200"), http.StatusBadRequest},
		{"conflict", AlreadyExists("episode", "url"), http.StatusConflict},
		{"other", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := Invalid("limit", "must be at most 200")
	assert.EqualError(t, err, "limit: must be at most 200")
	assert.True(t, errors.Is(err, ErrValidation))

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "limit", ve.Field)
}
