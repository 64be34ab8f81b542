// Package controller provides the HTTP handlers of the message board:
// the public listing, account sign-up and login, membership upgrade,
// and message posting.
package controller

import (
	"net/http"

	"clubboard/web/middleware"

	"github.com/gin-gonic/gin"
)

// BaseController provides the login gate shared by all controllers.
type BaseController struct{}

// checkLogin redirects anonymous requests to the login form.
func (a *BaseController) checkLogin(c *gin.Context) {
	if middleware.GetCurrentUser(c) == nil {
		c.Redirect(http.StatusFound, "/log-in")
		c.Abort()
	} else {
		c.Next()
	}
}
