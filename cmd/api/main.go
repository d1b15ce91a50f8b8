package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sangkips/admin-console/internal/application/service"
	"github.com/sangkips/admin-console/internal/config"
	"github.com/sangkips/admin-console/internal/infrastructure/adminapi"
	"github.com/sangkips/admin-console/internal/observability/logger"
	"github.com/sangkips/admin-console/internal/observability/metrics"
	"github.com/sangkips/admin-console/internal/presentation/http/handler"
	"github.com/sangkips/admin-console/internal/presentation/http/routes"
	"github.com/sangkips/admin-console/pkg/slipsink"
	"github.com/sangkips/admin-console/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	zl, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	invoiceMetrics := metrics.NewInvoiceMetrics(registry)

	// Upstream admin API
	admin := adminapi.NewClient(cfg.AdminAPI.BaseURL, cfg.AdminAPI.Timeout)

	// Slip copy sink
	fs := afero.NewOsFs()
	copySink, err := slipsink.NewSinkFromConfig(fs, slipsink.Config{
		Type:    cfg.Slip.CopySink,
		Dir:     cfg.Slip.Dir,
		Address: cfg.Slip.PrinterAddr,
		Email: slipsink.EmailConfig{
			SMTPHost:     cfg.SMTP.Host,
			SMTPPort:     cfg.SMTP.Port,
			SMTPUsername: cfg.SMTP.Username,
			SMTPPassword: cfg.SMTP.Password,
			FromName:     cfg.SMTP.FromName,
			FromEmail:    cfg.SMTP.FromEmail,
			To:           cfg.Slip.EmailTo,
		},
	})
	if err != nil {
		zl.Warn("failed to initialize slip copy sink, copies disabled", zap.Error(err))
		copySink = slipsink.NewNullSink()
	}
	defer copySink.Close()

	// Initialize services
	loader := service.NewCatalogLoader(admin, admin, zl.Named("catalog"), invoiceMetrics)
	sessions := service.NewSessionService(loader, admin, service.ComposerOptions{
		Fs:            fs,
		TempDir:       cfg.Slip.TempDir,
		CopySink:      copySink,
		SubmitTimeout: cfg.AdminAPI.Timeout,
		Logger:        zl.Named("invoice"),
		Metrics:       invoiceMetrics,
	}, cfg.Session.TTL, zl.Named("session"), invoiceMetrics)
	go sessions.Run(ctx, time.Minute)

	tokens := utils.NewSessionTokenManager(cfg.Session.Secret, cfg.Session.TTL)

	// Initialize handlers
	handlers := &routes.Handlers{
		Session: handler.NewSessionHandler(sessions, tokens, cfg.App.Env == "production"),
		Catalog: handler.NewCatalogHandler(),
		Invoice: handler.NewInvoiceHandler(cfg.App.Location()),
	}

	// Setup routes
	router, rateLimiter := routes.Setup(handlers, &routes.Deps{
		Cfg:      cfg,
		Logger:   zl.Named("http"),
		Tokens:   tokens,
		Sessions: sessions,
		Gatherer: registry,
	})
	defer rateLimiter.Stop()

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	zl.Info("starting console server",
		zap.String("name", cfg.App.Name),
		zap.String("port", port),
		zap.String("env", cfg.App.Env),
		zap.String("admin_api", cfg.AdminAPI.BaseURL),
	)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down console server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
	sessions.Drain()
}
