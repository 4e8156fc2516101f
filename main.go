package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"coachmetrics/internal/analytics"
	"coachmetrics/internal/client"
	"coachmetrics/internal/config"
	"coachmetrics/internal/export"
	"coachmetrics/internal/handlers"
	"coachmetrics/internal/mockdata"
	"coachmetrics/internal/notify"
	"coachmetrics/internal/storage"
	"coachmetrics/internal/telemetry"
	"coachmetrics/internal/transformer"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.Info("Starting CoachMetrics analytics service")

	// Initialize components
	httpClient := client.NewHTTPClient(cfg, logger)
	store := storage.NewMemoryStore()
	calculator := analytics.NewCalculator()
	generator := mockdata.NewGenerator(cfg.MockSeed, cfg.MockMonths)
	tf := transformer.New(logger)
	exporter := export.NewExporter(cfg.SinkSecret, httpClient, logger)
	notifier := notify.NewNotifier(50, logger)
	defer notifier.Close()
	metrics := telemetry.NewMetrics("coachmetrics")

	youtube := client.NewYouTubeClient(cfg, httpClient, logger)
	kajabi := client.NewKajabiClient(cfg, httpClient, logger)
	calcom := client.NewCalComClient(cfg, httpClient, logger)
	ai := client.NewInsightsClient(cfg, httpClient, logger)

	// Initialize handlers
	handler := handlers.New(cfg, store, calculator, youtube, kajabi, calcom, ai,
		generator, tf, exporter, notifier, metrics, logger)

	// Setup Gin router
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), metrics.Middleware())

	// Health endpoints
	router.GET("/healthz", handler.HealthCheck)
	router.GET("/readyz", handler.ReadinessCheck)

	// Ingestion endpoint
	router.POST("/ingest/run", handler.IngestData)

	// Dashboard endpoints
	router.GET("/api/dashboard", handler.GetDashboard)
	router.POST("/api/dashboard", handler.PostDashboard)
	router.POST("/api/ai-insights", handler.AIInsights)
	router.GET("/api/videos", handler.GetVideos)
	router.GET("/api/countries", handler.GetCountries)
	router.GET("/api/funnel", handler.GetFunnel)
	router.GET("/api/insights", handler.GetInsights)
	router.GET("/api/emails", handler.GetEmails)
	router.GET("/api/traffic", handler.GetTraffic)
	router.GET("/api/integrations", handler.GetIntegrations)
	router.GET("/api/notifications", handler.GetNotifications)

	// Export endpoint
	router.POST("/export/run", handler.ExportData)

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(telemetry.Handler()))

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
