package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/pcacademy/backend/apps/api/echo"
	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/core/assistant"
	"github.com/pcacademy/backend/core/catalog"
	"github.com/pcacademy/backend/core/community"
	"github.com/pcacademy/backend/core/forum"
	"github.com/pcacademy/backend/core/leaderboard"
	"github.com/pcacademy/backend/core/progress"
	"github.com/pcacademy/backend/core/user"
	emailsvc "github.com/pcacademy/backend/services/email"
	filestoresvc "github.com/pcacademy/backend/services/filestore"
	llmsvc "github.com/pcacademy/backend/services/llm"
	logsvc "github.com/pcacademy/backend/services/logger"
	"github.com/pcacademy/backend/storage/docstore/postgres"
	leaderboardcache "github.com/pcacademy/backend/storage/leaderboard"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewStdLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))
	} else {
		rl := logsvc.NewRollbarLogger(
			log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
			core.Conf,
		)
		rl.Enable(true)
		logger = rl
	}

	db, err := postgres.Open(core.Conf.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() { _ = db.Close() }()
	if err = postgres.Migrate(context.Background(), db); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}
	store := postgres.NewStore(db)

	// redis backs the live leaderboard; the app runs degraded without it
	var boardCache leaderboard.Cache
	redisClient := leaderboardcache.NewClient(core.Conf.Redis)
	if err = redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn(fmt.Sprintf("redis unavailable, live leaderboard updates disabled: %v", err))
	} else {
		boardCache = leaderboardcache.NewCache(redisClient)
		defer func() { _ = redisClient.Close() }()
	}

	files, err := filestoresvc.NewLocalStore(core.Conf.Media)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
	}

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrSvc := user.NewService(user.NewRepository(store), mailSvc)
	catSvc := catalog.NewService(catalog.NewRepository(store), files, logger, 0)
	brdSvc := leaderboard.NewService(leaderboard.NewRepository(store), boardCache, logger)
	prgSvc := progress.NewService(progress.NewRepository(store), catSvc, brdSvc, core.Conf.Quiz.PointsPerQuestion)
	comSvc := community.NewService(community.NewRepository(store), files)
	frmSvc := forum.NewService(forum.NewRepository(store))

	// the AI assistant is optional; without credentials its endpoints are
	// simply not registered
	var astSvc *assistant.Service
	provider, err := llmsvc.NewProvider(context.Background(), core.Conf.AI)
	if err != nil {
		logger.Warn(fmt.Sprintf("AI assistant disabled: %v", err))
	} else {
		astSvc = assistant.NewService(provider, logger)
		logger.Info("AI assistant enabled with model " + provider.ModelID())
	}

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Addr:           core.Conf.Server.Addr,
		Logger:         logger,
		Files:          files,
		UserSvc:        usrSvc,
		CatalogSvc:     catSvc,
		ProgressSvc:    prgSvc,
		LeaderboardSvc: brdSvc,
		CommunitySvc:   comSvc,
		ForumSvc:       frmSvc,
		AssistantSvc:   astSvc,
		Shutdown:       func() { shutdown <- syscall.SIGTERM },
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening on " + core.Conf.Server.Addr)
		serverErrors <- app.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err = app.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
