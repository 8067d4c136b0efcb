package middleware

import (
	"strings"

	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Authenticate is a Gin middleware for JWT authentication of API requests.
// It resolves the Bearer token into a service.Identity stored on the context.
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			RespondError(c, service.ErrUnauthenticated)
			return
		}

		// format: "Bearer <token>"
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			RespondError(c, service.ErrInvalidToken)
			return
		}

		id, err := authService.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			RespondError(c, err)
			return
		}

		c.Set(identityKey, id)
		c.Set("userID", id.UserID)
		c.Set("role", string(id.Role))

		c.Next()
	}
}

// Authorize checks the identity set by Authenticate against the policy table.
func Authorize(authService service.AuthService, op service.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		if err := authService.Authorize(id, op); err != nil {
			RespondError(c, err)
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the caller resolved by Authenticate.
func IdentityFrom(c *gin.Context) (*service.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	id, ok := v.(*service.Identity)
	return id, ok && id != nil
}
