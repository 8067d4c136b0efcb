package middleware

import (
	"errors"
	"net/http"

	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// retryAfterSeconds is sent with 503 responses.
const retryAfterSeconds = "1"

// StatusFor maps a service error kind to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes {"error": message} with the mapped status and aborts the chain.
// Internal errors are attached to the context for the request logger and never shown.
func RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", retryAfterSeconds)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": service.PublicMessage(err)})
}
