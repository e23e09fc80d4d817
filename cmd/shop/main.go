package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/butrintmetaj7/shop-client/config"
	"github.com/butrintmetaj7/shop-client/internal/delivery"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)

	app, err := delivery.NewApp(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize client: %v", err)
	}
	defer app.Close()

	cliApp := &cli.App{
		Name:     "shop",
		Usage:    "storefront client",
		Commands: app.Commands(),
	}

	if err := cliApp.Run(os.Args); err != nil {
		// cli.Exit errors already carry the user-facing message.
		logger.Debugf("Command failed: %v", err)
		os.Exit(1)
	}
}
