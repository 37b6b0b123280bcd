package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"io.winapps.missingpersonalert/internal/alerts"
	"io.winapps.missingpersonalert/internal/config"
	"io.winapps.missingpersonalert/internal/db"
	firebaseutil "io.winapps.missingpersonalert/internal/firebase"
	"io.winapps.missingpersonalert/internal/geocode"
	"io.winapps.missingpersonalert/internal/handlers"
	"io.winapps.missingpersonalert/internal/middleware"
	"io.winapps.missingpersonalert/internal/notify"
	"io.winapps.missingpersonalert/internal/observability"
	"io.winapps.missingpersonalert/internal/persons"
	"io.winapps.missingpersonalert/internal/scheduler"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalw("Failed to load configuration", "error", err)
	}

	// Initialize Firebase and the FCM client
	firebaseApp, err := firebaseutil.InitFirebase()
	if err != nil {
		logger.Fatalw("Failed to initialize Firebase", "error", err)
	}
	fcmClient, err := firebaseutil.GetMessagingClient(firebaseApp)
	if err != nil {
		logger.Fatalw("Failed to initialize FCM client", "error", err)
	}

	// Initialize PostgreSQL
	postgresDB, err := db.InitPostgres()
	if err != nil {
		logger.Fatalw("Failed to initialize PostgreSQL", "error", err)
	}
	defer postgresDB.Close()

	// Initialize Redis
	redisClient, err := db.InitRedis()
	if err != nil {
		logger.Fatalw("Failed to initialize Redis", "error", err)
	}
	defer redisClient.Close()

	metrics := observability.NewMetrics()

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core services
	registry := notify.NewTokenRegistry(postgresDB, logger)
	if err := registry.Load(rootCtx); err != nil {
		logger.Warnw("Failed to load persisted push tokens", "error", err)
	}

	notifier := notify.NewService(fcmClient, registry, redisClient, cfg.AlertTopic, logger, metrics)
	resolver := geocode.NewResolver(cfg, logger, metrics)

	store := persons.NewPostgresStore(postgresDB)
	personService := persons.NewService(store, cfg.UploadDir, cfg.ReportLifetime, logger)
	sweeper := persons.NewSweeper(store, logger, metrics)

	poller := alerts.NewPoller(cfg.FeedURL, logger, metrics)

	// Background jobs
	sched := scheduler.New(logger)
	if err := sched.AddEvery(cfg.PollInterval, "feed-poll", func() {
		poller.Poll(rootCtx)
	}); err != nil {
		logger.Fatalw("Failed to schedule feed polling", "error", err)
	}
	if err := sched.AddCron(cfg.SweepSchedule, "expiry-sweep", func() {
		sweeper.Sweep(rootCtx)
	}); err != nil {
		logger.Fatalw("Failed to schedule expiry sweep", "error", err)
	}
	sched.Start()

	// First poll fires immediately instead of waiting a full interval.
	go poller.Poll(rootCtx)

	// Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	personsHandler := handlers.NewPersonsHandler(personService, resolver, notifier, logger)
	alertsHandler := handlers.NewAlertsHandler(poller, logger)
	notificationsHandler := handlers.NewNotificationsHandler(registry, redisClient, logger)

	api := router.Group("/api")
	{
		personsGroup := api.Group("/persons")
		{
			personsGroup.POST("/publish", personsHandler.PublishPerson)
			personsGroup.GET("", personsHandler.GetPersons)
			personsGroup.GET("/:id", personsHandler.GetPerson)
			personsGroup.GET("/image/:filename", personsHandler.ServeImage)
		}

		api.GET("/alerts", alertsHandler.GetAlerts)

		notificationsGroup := api.Group("/notifications")
		{
			notificationsGroup.POST("/register", notificationsHandler.RegisterPushToken)
			notificationsGroup.GET("/stats", notificationsHandler.GetNotificationStats)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Create HTTP server
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Infow("Server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	sched.Stop()
	cancel()

	// Give a 5 second timeout for graceful shutdown
	ctx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalw("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
