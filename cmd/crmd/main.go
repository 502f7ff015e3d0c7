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

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/config"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/api"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/db"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/engine"
	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "sorrija-crm ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	crmStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Run the transition rule engine on its own timer in the background.
	// The /api/engine/run endpoint shares the same service, so an external
	// scheduler can also drive it.
	engineSvc := engine.NewService(cfg, crmStore, logger)
	go engineSvc.Run(ctx)

	router := api.NewRouter(crmStore, engineSvc, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

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

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
