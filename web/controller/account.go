package controller

import (
	"crypto/subtle"
	"net/http"

	"clubboard/config"
	"clubboard/logger"
	"clubboard/web/middleware"
	"clubboard/web/service"
	"clubboard/web/validation"

	"github.com/gin-gonic/gin"
)

// MembershipForm carries the shared passcode submission.
type MembershipForm struct {
	MembershipSecret string `json:"membershipSecret" form:"membershipSecret"`
}

// AccountController handles sign-up and the membership upgrade.
type AccountController struct {
	BaseController

	userService service.UserService
}

// NewAccountController creates a new AccountController and initializes its routes.
func NewAccountController(g *gin.RouterGroup) *AccountController {
	a := &AccountController{}
	a.initRouter(g)
	return a
}

func (a *AccountController) initRouter(g *gin.RouterGroup) {
	g.GET("/sign-up", a.signUpForm)
	g.POST("/sign-up", a.signUp)
	g.GET("/membership", a.membershipForm)
	g.POST("/membership", a.checkLogin, a.membership)
}

func (a *AccountController) signUpForm(c *gin.Context) {
	html(c, "sign-up-form.html", gin.H{
		"errors": validation.FieldErrors{},
		"data":   validation.SignUpForm{},
	})
}

// signUp validates the submission, creates the user and renders the
// membership prompt. The new user is not logged in automatically.
func (a *AccountController) signUp(c *gin.Context) {
	var form validation.SignUpForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warning("bind sign-up form:", err)
		c.Redirect(http.StatusFound, "/sign-up")
		return
	}

	fieldErrs, err := validation.CheckSignUp(&form, &a.userService)
	if err != nil {
		abortWithError(c, "validate sign-up", err)
		return
	}
	if fieldErrs.Any() {
		htmlStatus(c, http.StatusBadRequest, "sign-up-form.html", gin.H{
			"errors": fieldErrs,
			"data":   form,
		})
		return
	}

	user, err := a.userService.Register(form.Username, form.Password)
	if err != nil {
		// The pre-check passed but the insert lost the race.
		if err == service.ErrUsernameTaken {
			htmlStatus(c, http.StatusBadRequest, "sign-up-form.html", gin.H{
				"errors": validation.FieldErrors{"username": service.ErrUsernameTaken.Error()},
				"data":   form,
			})
			return
		}
		abortWithError(c, "register user", err)
		return
	}

	html(c, "membership-form.html", gin.H{
		"username": user.Username,
		"fail":     false,
	})
}

func (a *AccountController) membershipForm(c *gin.Context) {
	html(c, "membership-form.html", gin.H{
		"fail": false,
	})
}

// membership upgrades the current session's user when the submitted
// passcode matches the configured secret. The upgrade is scoped to the
// logged-in user; the request body cannot name someone else.
func (a *AccountController) membership(c *gin.Context) {
	user := middleware.GetCurrentUser(c)

	var form MembershipForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warning("bind membership form:", err)
		c.Redirect(http.StatusFound, "/membership")
		return
	}

	passcode := config.GetMembershipPasscode()
	if passcode == "" {
		logger.Warning("membership passcode is not configured")
	}
	if passcode == "" || subtle.ConstantTimeCompare([]byte(form.MembershipSecret), []byte(passcode)) != 1 {
		html(c, "membership-form.html", gin.H{
			"username": user.Username,
			"fail":     true,
		})
		return
	}

	if err := a.userService.SetMembership(user.Id, true); err != nil {
		abortWithError(c, "upgrade membership", err)
		return
	}

	logger.Infof("%s unlocked membership", user.Username)
	c.Redirect(http.StatusFound, "/")
}
