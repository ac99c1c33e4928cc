package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/quadbase/ocms/apps/api/echo"
	"github.com/quadbase/ocms/core"
	"github.com/quadbase/ocms/core/analytics"
	"github.com/quadbase/ocms/core/catalog"
	"github.com/quadbase/ocms/core/enroll"
	"github.com/quadbase/ocms/core/user"
	"github.com/quadbase/ocms/services/email"
	"github.com/quadbase/ocms/services/logger"
	"github.com/quadbase/ocms/storage/database"
	"github.com/quadbase/ocms/storage/database/sqlxrepos"
)

func main() {
	conf := core.Conf

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	apiLogger := logsvc.NewRollbarLogger(std, conf)
	apiLogger.Enable(!conf.Debug)

	apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer apiLogger.Info("Application stopped")

	// =========================================================================
	// Set up database

	db, err := database.Open(conf)
	if err != nil {
		apiLogger.Error(fmt.Sprintf("opening database: %v", err), err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			apiLogger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// =========================================================================
	// Set up services

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(apiLogger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	catRepo := sqlxrepos.NewCatalogRepository(db)
	enrRepo := sqlxrepos.NewEnrollRepository(db)
	aclRepo := sqlxrepos.NewACLRepository(db)
	anlRepo := sqlxrepos.NewAnalyticsRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc, apiLogger)
	catSvc := catalog.NewService(catRepo)
	gate := enroll.NewGate(catRepo, aclRepo)
	enrSvc := enroll.NewService(enrRepo, aclRepo, gate)
	anlSvc := analytics.NewService(anlRepo)

	// =========================================================================
	// Start API server

	server := echoapi.NewServer(&echoapi.Options{
		Address:      conf.Server.Address(),
		UserSvc:      usrSvc,
		CatalogSvc:   catSvc,
		EnrollSvc:    enrSvc,
		AnalyticsSvc: anlSvc,
		Gate:         gate,
		Logger:       apiLogger,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		apiLogger.Error(fmt.Sprintf("server error: %v", err), err)
		os.Exit(1)

	case sig := <-server.ShutdownSignal():
		apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				apiLogger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
				os.Exit(1)
			}
		}
	}
}
