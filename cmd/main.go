package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/rafael-ceotto/StormGuard/internal/config"
	v1 "github.com/rafael-ceotto/StormGuard/internal/handler/http/v1"
	"github.com/rafael-ceotto/StormGuard/internal/push"
	"github.com/rafael-ceotto/StormGuard/internal/repository"
	"github.com/rafael-ceotto/StormGuard/internal/service"
	"github.com/rafael-ceotto/StormGuard/internal/trigger"
	"github.com/rafael-ceotto/StormGuard/pkg/logger"
	"github.com/rafael-ceotto/StormGuard/pkg/postgres"
	redisclient "github.com/rafael-ceotto/StormGuard/pkg/redis"
	"github.com/sirupsen/logrus"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title StormGuard Alert Dispatch API
// @version 1.0
// @description Disaster alert targeting and dispatch engine.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Repositories
	userRepo := repository.NewUserRepository(dbpool)
	alertRepo := repository.NewAlertRepository(dbpool, redisClient)
	metricsRepo := repository.NewMetricsRepository(dbpool)

	// Push gateway client
	gateway := push.NewHTTPGateway(cfg, log)

	// Services
	dispatchService := service.NewDispatchService(userRepo, alertRepo, metricsRepo, gateway, log, cfg)
	alertService := service.NewAlertService(alertRepo, log)

	// Prediction trigger queue
	predictionPublisher := trigger.NewRedisPublisher(redisClient)
	triggerWorker := trigger.NewWorker(redisClient, dispatchService, log, cfg)
	triggerWorker.Start(ctx)

	// HTTP handlers
	handler := v1.NewHandler(dispatchService, alertService, predictionPublisher, log, cfg)

	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
