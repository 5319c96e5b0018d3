package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"fitify/internal/config"
	"fitify/internal/db"
	"fitify/internal/event"
	"fitify/internal/logger"
	"fitify/internal/rules"
	"fitify/internal/server"
)

// @title Fitify API
// @version 1.0
// @description Multi-location fitness class scheduling and booking API.
// @host localhost:8080
// @BasePath /
func main() {
	logger.Init()
	logger.Info("Starting Fitify application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	rulesStore := rules.NewStore(rules.Rules{
		CancellationWindowHours: cfg.CancellationWindowHours,
		MaxWaitlistSize:         cfg.MaxWaitlistSize,
		MaxBookingsPerDay:       cfg.MaxBookingsPerDay,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go rules.NewSubscriber(redisClient, rulesStore).Start(ctx)

	outbox := event.NewOutbox(database)
	go event.NewRelay(outbox, redisClient, time.Second).Start(ctx)
	logger.Info("Event relay started")

	srv := server.New(database, cfg, rulesStore, outbox)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
