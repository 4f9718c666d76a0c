package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice-api/internal/service"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
	"github.com/noah-isme/course-backoffice-api/pkg/response"
)

// Token protects routes with the query-string API token. The upstream
// systems cannot set headers on their callbacks, so the token travels as
// ?token=. A missing token is a 401, a bad one a 403. Debug mode skips the
// check entirely.
func Token(authService *service.AuthService, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if debug {
			c.Next()
			return
		}

		token := c.Query("token")
		if token == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if err := authService.ValidateToken(token); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
