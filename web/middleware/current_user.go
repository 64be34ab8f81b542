// Package middleware carries the request-scoped gin middleware of the
// web server.
package middleware

import (
	"clubboard/database"
	"clubboard/database/model"
	"clubboard/logger"
	"clubboard/web/service"
	"clubboard/web/session"

	"github.com/gin-gonic/gin"
)

// CurrentUserKey is the gin context key holding the resolved *model.User.
const CurrentUserKey = "currentUser"

// CurrentUser resolves the session's user id to a full user record once
// per request. A session pointing at a deleted user degrades to
// anonymous rather than erroring.
func CurrentUser(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := session.LoginUserId(c); ok {
			user, err := users.GetUserById(id)
			switch {
			case err == nil:
				c.Set(CurrentUserKey, user)
			case database.IsNotFound(err):
				// Stale identity, treat as anonymous.
			default:
				logger.Warning("restore session user:", err)
			}
		}
		c.Next()
	}
}

// GetCurrentUser returns the request's authenticated user, or nil.
func GetCurrentUser(c *gin.Context) *model.User {
	if obj, ok := c.Get(CurrentUserKey); ok {
		if user, ok := obj.(*model.User); ok {
			return user
		}
	}
	return nil
}
