// Package web provides the message board's web server: routing,
// templates, session middleware and the session-janitor cron.
package web

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net"
	"net/http"

	"clubboard/config"
	"clubboard/database"
	"clubboard/logger"
	"clubboard/util/common"
	"clubboard/web/controller"
	"clubboard/web/job"
	"clubboard/web/middleware"
	"clubboard/web/service"
	"clubboard/web/store"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

//go:embed html/*
var htmlFS embed.FS

const sessionCookieName = "clubboard"

// Server is the message board web server with its controllers and the
// scheduled session cleanup.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	index   *controller.IndexController
	account *controller.AccountController
	message *controller.MessageController

	userService service.UserService

	sessionStore *store.GormStore

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel}
}

// getHtmlTemplate parses the embedded templates.
func (s *Server) getHtmlTemplate() (*template.Template, error) {
	return template.ParseFS(htmlFS, "html/*.html")
}

// initRouter initializes Gin, registers middleware, templates and
// controllers and returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	secret := config.GetSessionSecret()
	if secret == "" {
		return nil, common.NewError("CLUB_SESSION_SECRET must be set")
	}

	s.sessionStore = store.NewGormStore(database.GetDB(), []byte(secret))
	s.sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   config.GetSessionMaxAge(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(sessionCookieName, s.sessionStore))
	engine.Use(middleware.CurrentUser(&s.userService))

	tpl, err := s.getHtmlTemplate()
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tpl)

	g := engine.Group("/")
	s.index = controller.NewIndexController(g)
	s.account = controller.NewAccountController(g)
	s.message = controller.NewMessageController(g)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	s.cron = cron.New()
	s.cron.AddJob("@hourly", job.NewClearSessionsJob(s.sessionStore))
	s.cron.Start()

	listener, err := net.Listen("tcp", config.GetListenAddr())
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	return nil
}

// Stop gracefully shuts down the web server and the cron.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}

// GetCtx returns the server's context.
func (s *Server) GetCtx() context.Context { return s.ctx }
