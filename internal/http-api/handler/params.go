package handler

import (
	"strconv"

	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondError(c, service.Validationf("invalid %s", name))
		return 0, false
	}
	return id, true
}

// caller returns the authenticated identity; routes using it sit behind Authenticate.
func caller(c *gin.Context) (*service.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		middleware.RespondError(c, service.ErrUnauthenticated)
		return nil, false
	}
	return id, true
}
