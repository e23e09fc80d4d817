package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/butrintmetaj7/shop-client/config"
	"github.com/butrintmetaj7/shop-client/internal/stubserver"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
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

	gin.SetMode(gin.ReleaseMode)
	server := stubserver.New(logger)
	router := server.Router()

	logger.Infof("Starting stub storefront API on %s", cfg.StubPort)
	if err := router.Run(cfg.StubPort); err != nil {
		logger.Errorf("Failed to start stub server on %s: %v", cfg.StubPort, err)
		os.Exit(1)
	}
}
