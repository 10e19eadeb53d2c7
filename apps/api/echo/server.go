package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/core/assistant"
	"github.com/pcacademy/backend/core/catalog"
	"github.com/pcacademy/backend/core/community"
	"github.com/pcacademy/backend/core/forum"
	"github.com/pcacademy/backend/core/leaderboard"
	"github.com/pcacademy/backend/core/progress"
	"github.com/pcacademy/backend/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Logger         core.Logger
		Files          core.FileStore
		UserSvc        *user.Service
		CatalogSvc     *catalog.Service
		ProgressSvc    *progress.Service
		LeaderboardSvc *leaderboard.Service
		CommunitySvc   *community.Service
		ForumSvc       *forum.Service
		AssistantSvc   *assistant.Service // optional

		// Shutdown is signaled when an unrecoverable error is caught.
		Shutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := core.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	signalShutdown := s.opts.Shutdown
	if signalShutdown == nil {
		signalShutdown = func() {}
	}
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, signalShutdown)
	s.app.Debug = debug
	s.app.HideBanner = true

	s.app.GET("/", home)
	s.app.Static("/media", core.Conf.Media.Dir)

	v1 := s.app.Group("/v1")
	jwt := jwtMiddleware(true)
	optJwt := jwtMiddleware(false)

	registerUserAPI(v1, jwt, s.opts.UserSvc, s.opts.Files)
	registerCatalogAPI(v1, optJwt, s.opts.CatalogSvc, s.opts.ProgressSvc)
	registerProgressAPI(v1, jwt, s.opts.ProgressSvc, s.opts.CatalogSvc)
	registerQuizAPI(v1, optJwt, s.opts.CatalogSvc, s.opts.ProgressSvc)
	registerLeaderboardAPI(v1, s.opts.LeaderboardSvc, s.opts.Logger)
	registerCommunityAPI(v1, jwt, s.opts.CommunitySvc, s.opts.AssistantSvc, s.opts.Files)
	registerForumAPI(v1, jwt, s.opts.ForumSvc)
	if s.opts.AssistantSvc != nil {
		registerAssistantAPI(v1, optJwt, s.opts.AssistantSvc, s.opts.CatalogSvc)
	}
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to PC Academy API!")
}
