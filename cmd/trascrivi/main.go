package main

import (
	"fmt"
	"os"

	"github.com/xpanvictor/verbale/internal/app"
	"github.com/xpanvictor/verbale/internal/cli"
	"github.com/xpanvictor/verbale/internal/config"
	"github.com/xpanvictor/verbale/pkg/Logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := Logger.New(cfg.Debug)
	defer logger.Sync()

	application := app.NewApp(cfg, logger)
	err = cli.NewTranscribeCmd(&cli.Dependencies{App: application}).Execute()
	if cerr := application.Close(); cerr != nil {
		logger.Warnf("cleanup: %v", cerr)
	}
	if err != nil {
		logger.Errorf("%v", err)
		logger.Sync()
		os.Exit(1)
	}
}
