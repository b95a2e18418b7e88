package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/absentee/apps/api/echo"
	"github.com/trezcool/absentee/apps/shared"
	"github.com/trezcool/absentee/core"
	logsvc "github.com/trezcool/absentee/services/logger"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	deps := shared.NewDeps(conf, logger)

	absenceSvc, err := deps.AbsenceService()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up absence service: %v", err), err)
	}

	// the lead form is optional: without LEAD_ENDPOINT /v1/leads is not served
	leadSvc, err := deps.LeadService()
	if err != nil {
		var cfgErr *core.ConfigError
		if !errors.As(err, &cfgErr) {
			logger.Fatal(fmt.Sprintf("setting up lead service: %v", err), err)
		}
		logger.Warn("lead intake disabled", err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	if conf.Server.DebugHost != "" {
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		go func() {
			if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
				logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
			}
		}()
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.Options{
		Conf:       conf,
		Logger:     logger,
		Translator: deps.Translator,
		AbsenceSvc: absenceSvc,
		LeadSvc:    leadSvc,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}

		// let in-flight summary emails finish before the logger is flushed
		deps.MailSvc.Wait()
	}
}
