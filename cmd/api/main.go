package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/internal/adapter/handler"
	"github.com/johnquangdev/meeting-analyzer/internal/app"
	httpmw "github.com/johnquangdev/meeting-analyzer/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
	pkglogger "github.com/johnquangdev/meeting-analyzer/pkg/logger"
	pkgmw "github.com/johnquangdev/meeting-analyzer/pkg/middleware"
	pkgvalidator "github.com/johnquangdev/meeting-analyzer/pkg/validator"
)

// @title           Meeting Analyzer API
// @version         1.0
// @description     Analyzes meeting notes with a chat-completion model and runs Drive batch passes
// @BasePath        /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the API token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := pkglogger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	e.Use(pkgmw.RequestID())

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${id} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// Metrics registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Batch runs need a Drive folder; without one only /v1/analyses is served
	withBatch := cfg.Drive.FolderURL != ""

	logger.Info("🔧 Initializing dependencies...", zap.Bool("batch_runs", withBatch))
	application, err := app.New(ctx, cfg, reg, withBatch, logger)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer application.Close()

	var runner handler.BatchRunner
	if application.Batch != nil {
		runner = application.Batch
	}
	analysisHandler := handler.NewAnalysisHandler(application.Analyzer, runner, logger)

	// Setup router with handlers
	logger.Info("🛣️  Setting up routes...")
	metricsHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	router := handler.NewRouter(cfg, analysisHandler, metricsHandler, httpmw.EchoBearerAuth(cfg.Server.APIToken))
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.GetServerAddr()
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Environment))

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("✅ Server stopped gracefully")
}
