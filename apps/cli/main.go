package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/absentee/apps/shared"
	"github.com/trezcool/absentee/core"
	logsvc "github.com/trezcool/absentee/services/logger"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "CLI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	deps := shared.NewDeps(conf, logger)
	cli := commandLine{
		absenceSvc: deps.AbsenceService,
		leadSvc:    deps.LeadService,
		mailSvc:    deps.MailSvc,
		translator: deps.Translator,
		out:        os.Stdout,
		progress:   isTerminalFunc(int(os.Stdout.Fd())),
	}

	err = cli.run(context.Background(), os.Args[1:])
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
