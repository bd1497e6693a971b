package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-inventory-backend/config"
	"smart-inventory-backend/internal/api"
	"smart-inventory-backend/internal/metrics"
	"smart-inventory-backend/internal/realtime"
	"smart-inventory-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "stock-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded (persistent store: %t)", cfg.UsePersistentStore())

	// The store is chosen once; a configured database that cannot be reached is fatal.
	appStore, err := store.Open(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to open store: %v", err)
	}

	m := metrics.New()
	appStore = metrics.InstrumentStore(appStore, m)

	hub := realtime.NewHub(cfg.Realtime.Buffer, m)
	defer hub.Close()

	router := api.NewRouter(cfg, appStore, hub, m)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Hijacked websocket connections are not tracked by Shutdown; closing the
	// hub ends their send loops.
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
