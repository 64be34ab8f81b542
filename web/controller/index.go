package controller

import (
	"errors"
	"net/http"
	"time"

	"clubboard/logger"
	"clubboard/web/middleware"
	"clubboard/web/service"
	"clubboard/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request structure.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// IndexController handles the board listing and login-related routes.
type IndexController struct {
	BaseController

	userService    service.UserService
	messageService service.MessageService
}

// NewIndexController creates a new IndexController and initializes its routes.
func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/log-in", a.loginForm)
	g.POST("/log-in", a.login)
	g.GET("/log-out", a.logout)
}

// index renders the board. Anonymous viewers only see title and text;
// authors, ids and timestamps require a login.
func (a *IndexController) index(c *gin.Context) {
	views, err := a.messageService.List()
	if err != nil {
		abortWithError(c, "list messages", err)
		return
	}

	user := middleware.GetCurrentUser(c)
	if user == nil {
		for i := range views {
			views[i].Id = 0
			views[i].Author = ""
			views[i].CreatedAt = time.Time{}
		}
	}

	html(c, "index.html", gin.H{
		"messages": views,
	})
}

func (a *IndexController) loginForm(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	html(c, "log-in.html", nil)
}

// login verifies the submitted credentials and transitions the session
// to authenticated on success.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		if err := session.AddFlash(c, session.FlashError, "Invalid form data"); err != nil {
			logger.Warning("queue login flash:", err)
		}
		c.Redirect(http.StatusFound, "/log-in")
		return
	}

	user, err := a.userService.Verify(form.Username, form.Password)
	if err != nil {
		var credErr *service.CredentialError
		if errors.As(err, &credErr) {
			logger.Warningf("failed login for %q from %s", form.Username, c.ClientIP())
			if err := session.AddFlash(c, session.FlashError, credErr.Reason); err != nil {
				logger.Warning("queue login flash:", err)
			}
			c.Redirect(http.StatusFound, "/log-in")
			return
		}
		abortWithError(c, "verify credentials", err)
		return
	}

	if err := session.SetLoginUser(c, user); err != nil {
		abortWithError(c, "save session", err)
		return
	}

	logger.Infof("%s logged in from %s", user.Username, c.ClientIP())
	c.Redirect(http.StatusFound, "/")
}

// logout invalidates the session. A no-op for anonymous visitors.
func (a *IndexController) logout(c *gin.Context) {
	if user := middleware.GetCurrentUser(c); user != nil {
		logger.Infof("%s logged out", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		abortWithError(c, "clear session", err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
