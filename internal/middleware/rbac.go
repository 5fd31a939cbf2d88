package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/response"
)

// RequireRoles allows only signed-in users holding one of roles. It must run
// after RequireSession.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		manager := SessionFrom(c)
		if manager == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		user := manager.User()
		if user == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
