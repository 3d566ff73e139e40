package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lendaro/loanledger/internal/core/services"
	"github.com/lendaro/loanledger/internal/handlers"
	"github.com/lendaro/loanledger/internal/middleware"
	"github.com/lendaro/loanledger/internal/platform/config"
	"github.com/lendaro/loanledger/internal/repositories/database/pgsql"
	"github.com/lendaro/loanledger/internal/scheduler"
	"github.com/lendaro/loanledger/internal/utils"
	"github.com/lendaro/loanledger/pkg/database"
)

// apiTokenPurgeInterval is how often expired API tokens are swept.
const apiTokenPurgeInterval = 12 * time.Hour

// @title LoanLedger API
// @version 1.0
// @description General ledger service for loan origination.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations", logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, metrics)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(middleware.MetricsMiddleware())

	// Credentials must be allowed so the refresh token cookie survives
	// cross-origin calls from the front office.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendBaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-api-key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wire repositories and services
	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(cfg, repos)

	// API token auth runs before the JWT middleware that guards /api/v1
	r.Use(middleware.APITokenAuth(container.APIToken))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterRoutes(r, cfg, container)

	backGroundCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sched *scheduler.Scheduler
	if cfg.EnableScheduler {
		sched = scheduler.New(logger, cfg.JobTimeout)
		sched.Register(scheduler.JobAccrualDaily, cfg.AccrualJobInterval, scheduler.AccrualDailyJob(container.Accrual))
		sched.Register(scheduler.JobAnomalyScan, cfg.AnomalyScanInterval, scheduler.AnomalyScanJob(container.Anomaly))
		sched.Register(scheduler.JobAPITokenPurge, apiTokenPurgeInterval, scheduler.APITokenPurgeJob(repos.APITokenRepo))
		sched.Start(backGroundCtx)
		logger.Info("Scheduler started")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-backGroundCtx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	if sched != nil {
		sched.Wait()
	}
	logger.Info("Server exited gracefully.")
}

