// Package session reads and writes the login identity and flash
// notices stored in the per-request session.
package session

import (
	"encoding/gob"

	"clubboard/database/model"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const loginUserId = "LOGIN_USER_ID"

func init() {
	// Flash notices are stored as []any inside the gob-encoded session.
	gob.Register([]any{})
}

// Flash categories. Mirrored by the templates.
const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// SetLoginUser records the user's id in the session. Only the id is
// persisted; the full record is re-resolved on every request.
func SetLoginUser(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	s.Set(loginUserId, user.Id)
	return s.Save()
}

// LoginUserId returns the authenticated user id, if any.
func LoginUserId(c *gin.Context) (int, bool) {
	s := sessions.Default(c)
	if obj := s.Get(loginUserId); obj != nil {
		if id, ok := obj.(int); ok {
			return id, true
		}
	}
	return 0, false
}

func IsLogin(c *gin.Context) bool {
	_, ok := LoginUserId(c)
	return ok
}

// ClearSession drops all session state and expires the cookie.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}

// AddFlash queues a one-shot notice under the given category.
func AddFlash(c *gin.Context, category, msg string) error {
	s := sessions.Default(c)
	s.AddFlash(msg, category)
	return s.Save()
}

// TakeFlashes drains and returns the notices queued under category.
func TakeFlashes(c *gin.Context, category string) []string {
	s := sessions.Default(c)
	raw := s.Flashes(category)
	if len(raw) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	_ = s.Save()
	return msgs
}
