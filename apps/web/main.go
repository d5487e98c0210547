package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/grammarlab/grammarlab/core"
	"github.com/grammarlab/grammarlab/core/catalog"
	"github.com/grammarlab/grammarlab/core/user"
	"github.com/grammarlab/grammarlab/webapp"

	echoweb "github.com/grammarlab/grammarlab/apps/web/echo"
	emailsvc "github.com/grammarlab/grammarlab/services/email"
	logsvc "github.com/grammarlab/grammarlab/services/logger"
	"github.com/grammarlab/grammarlab/storage/database"
	sqlxrepos "github.com/grammarlab/grammarlab/storage/database/sqlx"
	redissessions "github.com/grammarlab/grammarlab/storage/sessions/redis"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	logger.Info(fmt.Sprintf("application initializing : version %q", conf.Build))
	defer logger.Info("application stopped")

	validate, translator := core.NewValidator()

	// the backend is opened lazily: a missing backend configuration fails
	// the first operation, not process startup
	facade := webapp.NewFacade(conf, logger, func() (*webapp.Deps, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db); err != nil {
			return nil, err
		}

		var mailSvc core.EmailService
		if conf.Debug {
			mailSvc = emailsvc.NewConsoleService(conf)
		} else {
			mailSvc = emailsvc.NewSendgridService(conf, logger)
		}

		return &webapp.Deps{
			Users:    user.NewService(sqlxrepos.NewUserRepository(db), mailSvc),
			Catalog:  catalog.NewService(sqlxrepos.NewCatalogRepository(db)),
			Sessions: redissessions.NewRegistry(conf),
		}, nil
	})

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoweb.NewServer(&echoweb.Options{
		Conf:           conf,
		Logger:         logger,
		Facade:         facade,
		Validate:       validate,
		Translator:     translator,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("server listening on %s", conf.ServerAddress()))
		serverErrors <- server.Start()
	}()

	select {
	case err := <-serverErrors:
		logger.Error(fmt.Sprintf("server error: %v", err), err)
		os.Exit(1)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
			os.Exit(1)
		}
	}
}
