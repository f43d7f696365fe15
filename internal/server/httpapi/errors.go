package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps a service error to an HTTP status and a message that is safe
// to show to the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrNoFile):
		return http.StatusBadRequest, "no file uploaded"
	case errors.Is(err, common.ErrUnsupportedMediaType):
		return http.StatusBadRequest, "unsupported file type: only images and videos are allowed"
	case errors.Is(err, common.ErrDuplicateUsername):
		return http.StatusBadRequest, "username already exists"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "invalid authentication token"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "file exceeds the maximum upload size"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func abortWithError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	c.AbortWithStatusJSON(status, errorBody{Error: msg})
}
