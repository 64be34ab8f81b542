package controller

import (
	"net/http"
	"strconv"

	"clubboard/logger"
	"clubboard/web/middleware"
	"clubboard/web/service"
	"clubboard/web/session"

	"github.com/gin-gonic/gin"
)

// MessageForm is the compose submission.
type MessageForm struct {
	Title string `json:"title" form:"title"`
	Text  string `json:"text" form:"text"`
}

// MessageController handles posting and deleting board messages. All
// routes require a login.
type MessageController struct {
	BaseController

	messageService service.MessageService
}

// NewMessageController creates a new MessageController and initializes its routes.
func NewMessageController(g *gin.RouterGroup) *MessageController {
	a := &MessageController{}
	a.initRouter(g)
	return a
}

func (a *MessageController) initRouter(g *gin.RouterGroup) {
	g.GET("/new-message", a.checkLogin, a.composeForm)
	g.POST("/new-message", a.checkLogin, a.create)
	g.POST("/messages/:id/delete", a.checkLogin, a.delete)
}

func (a *MessageController) composeForm(c *gin.Context) {
	html(c, "new-message.html", nil)
}

// create posts a message for the current user. Store failures are
// downgraded to a flash notice and a redirect back to the form.
func (a *MessageController) create(c *gin.Context) {
	user := middleware.GetCurrentUser(c)

	var form MessageForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warning("bind message form:", err)
		c.Redirect(http.StatusFound, "/new-message")
		return
	}

	if _, err := a.messageService.Create(user.Id, form.Title, form.Text); err != nil {
		logger.Error("new-message error:", err)
		if err := session.AddFlash(c, session.FlashError, "Could not post message."); err != nil {
			logger.Warning("queue message flash:", err)
		}
		c.Redirect(http.StatusFound, "/new-message")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// delete removes a message. Only the author or an admin may delete;
// deleting an id that no longer exists is a quiet no-op.
func (a *MessageController) delete(c *gin.Context) {
	user := middleware.GetCurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	authorId, found, err := a.messageService.GetAuthorId(id)
	if err != nil {
		abortWithError(c, "resolve message author", err)
		return
	}
	if found {
		if authorId != user.Id && !user.Admin {
			if err := session.AddFlash(c, session.FlashError, "You can only delete your own messages."); err != nil {
				logger.Warning("queue delete flash:", err)
			}
			c.Redirect(http.StatusFound, "/")
			return
		}
		if err := a.messageService.Delete(id); err != nil {
			abortWithError(c, "delete message", err)
			return
		}
	}

	if err := session.AddFlash(c, session.FlashSuccess, "Message deleted."); err != nil {
		logger.Warning("queue delete flash:", err)
	}
	c.Redirect(http.StatusFound, "/")
}
