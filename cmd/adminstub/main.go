package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/admin-console/internal/config"
	"github.com/sangkips/admin-console/internal/infrastructure/adminstub"
	"github.com/sangkips/admin-console/internal/observability/logger"
)

func main() {
	cfg := config.Load()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	zl, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	fixture, err := adminstub.LoadFixture(cfg.Stub.FixturePath)
	if err != nil {
		zl.Fatal("failed to load fixture", zap.Error(err))
	}

	server := adminstub.NewServer(fixture, zl.Named("adminstub"))

	zl.Info("starting admin api stub",
		zap.String("port", cfg.Stub.Port),
		zap.Int("clients", len(fixture.Clients)),
		zap.Int("products", len(fixture.Products)),
	)
	if err := server.Router().Run(":" + cfg.Stub.Port); err != nil {
		zl.Fatal("failed to start stub server", zap.Error(err))
	}
}
