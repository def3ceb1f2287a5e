package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lifex-server/internal/config"
	"lifex-server/internal/handler"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Wiring
	container, err := config.NewContainer()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer container.Close()

	logger := container.Logger
	cfg := container.Config

	// Handlers
	authHandler := handler.NewAuthHandler(container.SubscriptionService, logger)
	quotaHandler := handler.NewQuotaHandler(container.QuotaService, container.Engine.Policy(), logger).
		WithPreferences(container.PreferenceService)
	chatHandler := handler.NewChatHandler(container.ChatService, logger).
		WithPreferences(container.PreferenceService)
	preferenceHandler := handler.NewPreferenceHandler(container.PreferenceService, logger)
	adminHandler := handler.NewAdminHandler(container.SubscriptionService, cfg.GetAdminSecret(), logger)
	authMiddleware := handler.NewAuthMiddleware(container.AuthService, logger)

	// Router
	router := handler.NewRouter(
		authHandler,
		quotaHandler,
		chatHandler,
		adminHandler,
		preferenceHandler,
		authMiddleware.Middleware,
		cfg.GetAllowedOrigins(),
	)

	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", "address", server.Addr, "usage_store", cfg.GetUsageStore())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	logger.Info("Server exited")
}
