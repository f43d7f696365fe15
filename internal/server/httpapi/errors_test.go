package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: bad", common.ErrValidation), http.StatusBadRequest},
		{common.ErrNoFile, http.StatusBadRequest},
		{common.ErrUnsupportedMediaType, http.StatusBadRequest},
		{common.ErrDuplicateUsername, http.StatusBadRequest},
		{common.ErrInvalidCredentials, http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrTokenExpired, http.StatusUnauthorized},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", common.ErrorNotFound), http.StatusNotFound},
		{common.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{common.ErrorInternal, http.StatusInternalServerError},
		{errors.New("pq: connection refused at 10.0.0.5"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, msg := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestStatusFor_HidesInternalDetails(t *testing.T) {
	_, msg := statusFor(errors.New("pq: connection refused at 10.0.0.5"))
	assert.Equal(t, "internal server error", msg)
}
