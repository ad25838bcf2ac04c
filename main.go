package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"textattack/internal/config"
	"textattack/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	logger := appContainer.Logger
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- appContainer.Server.Start(":" + appConfig.Server.Port)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server stopped: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := appContainer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed: %v", err)
		os.Exit(1)
	}
}
