// Package web provides the web server of the usuarios panel: routing,
// sessions and background job scheduling.
package web

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/usuarios-app/usuarios/config"
	"github.com/usuarios-app/usuarios/logger"
	"github.com/usuarios-app/usuarios/util/common"
	"github.com/usuarios-app/usuarios/web/controller"
	"github.com/usuarios-app/usuarios/web/job"
	"github.com/usuarios-app/usuarios/web/middleware"
	"github.com/usuarios-app/usuarios/web/service"
	"github.com/usuarios-app/usuarios/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

// Server is the web server of the usuarios panel with its controllers,
// services and scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	index *controller.IndexController
	users *controller.UserController

	settingService service.SettingService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel}
}

// initRouter initializes gin, registers middleware and controllers and
// returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	webDomain, err := s.settingService.GetWebDomain()
	if err != nil {
		return nil, err
	}
	if webDomain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(webDomain))
	}

	basePath, err := s.settingService.GetBasePath()
	if err != nil {
		return nil, err
	}
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
	})

	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}
	store := cookie.NewStore([]byte(secret))
	engine.Use(sessions.Sessions(session.CookieName, store))

	mailService, err := s.newMailService()
	if err != nil {
		return nil, err
	}

	g := engine.Group(basePath)
	s.index = controller.NewIndexController(g)

	// Routes registered from here on are rate limited per client IP.
	g.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig()))
	s.users = controller.NewUserController(g, mailService)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// newMailService builds the mail sender from the stored settings plus the
// credential injected through the environment at startup.
func (s *Server) newMailService() (*service.MailService, error) {
	apiURL, err := s.settingService.GetMailAPIURL()
	if err != nil {
		return nil, err
	}
	sender, err := s.settingService.GetMailSender()
	if err != nil {
		return nil, err
	}
	senderName, err := s.settingService.GetMailSenderName()
	if err != nil {
		return nil, err
	}
	enabled, err := s.settingService.GetMailEnable()
	if err != nil {
		return nil, err
	}
	return service.NewMailService(apiURL, config.GetMailAPIKey(), sender, senderName, enabled), nil
}

// startTask schedules the background maintenance jobs.
func (s *Server) startTask() {
	if _, err := s.cron.AddJob("@daily", job.NewPurgeUnverifiedJob()); err != nil {
		logger.Warning("add purge unverified job failed:", err)
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New()
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listen, err := s.settingService.GetListen()
	if err != nil {
		return err
	}
	port, err := s.settingService.GetPort()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(listen, strconv.Itoa(port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()

	return nil
}

// Stop gracefully shuts down the web server and its cron jobs.
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

// GetCron returns the server's cron scheduler instance.
func (s *Server) GetCron() *cron.Cron { return s.cron }
