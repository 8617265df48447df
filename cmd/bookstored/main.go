package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookstore/backend/internal/auth"
	"github.com/bookstore/backend/internal/config"
	"github.com/bookstore/backend/internal/db"
	"github.com/bookstore/backend/internal/events"
	"github.com/bookstore/backend/internal/httpapi"
	"github.com/bookstore/backend/internal/repo"
	"github.com/bookstore/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := logger.NewLogger(cfg.ServiceName, cfg.LogLevel)
	defer log.Sync()

	log.Info("Bookstore backend starting")

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set, refusing to start")
	}

	// Connect to database
	log.Info("Connecting to database...")
	database, err := db.Connect(cfg.PGDSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Run migrations
	log.Info("Running database migrations...")
	if err := db.RunMigrations(database); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	users := repo.NewUserRepository(database, log)
	books := repo.NewBookRepository(database, log)
	orders := repo.NewOrderRepository(database, log)

	// Credential services
	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	// Connect to RabbitMQ when configured; events are optional
	var publisher events.EventPublisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		log.Info("Connecting to RabbitMQ")
		p, err := events.NewPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			log.Warn("RabbitMQ unavailable, events disabled", zap.Error(err))
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	// Build HTTP server
	server := httpapi.NewServer(users, books, orders, hasher, tokens, publisher, database, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      server.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped")
}
