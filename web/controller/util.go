package controller

import (
	"net/http"

	"clubboard/config"
	"clubboard/logger"
	"clubboard/web/middleware"
	"clubboard/web/session"

	"github.com/gin-gonic/gin"
)

// html renders a template with the current user and any queued flash
// notices folded into the view data.
func html(c *gin.Context, name string, data gin.H) {
	htmlStatus(c, http.StatusOK, name, data)
}

func htmlStatus(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["currentUser"] = middleware.GetCurrentUser(c)
	data["errorMessages"] = session.TakeFlashes(c, session.FlashError)
	data["successMessages"] = session.TakeFlashes(c, session.FlashSuccess)
	data["cur_ver"] = config.GetVersion()
	c.HTML(status, name, data)
}

// abortWithError logs the failure and serves the generic error page.
// Internal detail never reaches the client.
func abortWithError(c *gin.Context, msg string, err error) {
	logger.Error(msg+":", err)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"currentUser": middleware.GetCurrentUser(c),
	})
	c.Abort()
}
