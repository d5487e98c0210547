package echoweb

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/grammarlab/grammarlab/core"
	"github.com/grammarlab/grammarlab/webapp"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Facade         *webapp.Facade
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool

		// SignalShutdown is called when an unrecoverable error is caught;
		// the process should begin a graceful shutdown.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts  *Options
		app   *echo.Echo
		guard *webapp.Guard
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts:  opts,
		app:   echo.New(),
		guard: webapp.NewGuard(opts.Facade),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Renderer = newRenderer()
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	// pages
	s.app.GET("/", s.homePage)
	s.app.GET("/login", s.loginPage)
	s.app.GET("/signup", s.signupPage)
	s.app.GET("/dashboard", s.dashboardPage)
	s.app.GET("/levels", s.levelsPage)
	s.app.GET("/levels/:id/courses", s.coursesPage)
	s.app.GET("/courses/:id/lessons", s.lessonsPage)
	s.app.GET("/lessons/:id", s.lessonPage)
	s.app.GET("/admin", s.adminPage)
	s.app.GET("/admin/courses/new", s.newCoursePage)
	s.app.POST("/admin/courses", s.createCourseForm)

	// auth forms
	s.app.POST("/login", s.login)
	s.app.POST("/signup", s.signup)
	s.app.POST("/logout", s.logout)

	// JSON API
	api := s.app.Group("/api")
	api.GET("/user", s.currentUserAPI)
	api.PUT("/user/name", s.updateNameAPI)
	api.PUT("/user/password", s.updatePasswordAPI)
	api.POST("/admin/courses", s.createCourseAPI)

	s.app.GET("/healthz", s.healthz)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.ServerAddress())
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
