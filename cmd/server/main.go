// Package main is the entry point for the confhub API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"confhub/internal/app"
	"confhub/internal/config"
	v1 "confhub/internal/infrastructure/http/v1"
	"confhub/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		Service:     "confhub-server",
		Version:     cfg.Version,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithLogger(ctx, log)

	log.Infow("starting confhub server", "version", cfg.Version, "env", cfg.Env)
	if cfg.Admin.EphemeralSecret {
		log.Warn("JWT_SECRET is not set; using a random secret, admin tokens end with this process")
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()
	log.Info("database connection established")

	router := v1.NewRouter(v1.RouterConfig{
		Health:         a.HealthChecks(),
		Logger:         log,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Version:        cfg.Version,
		Development:    cfg.IsDevelopment(),
		Auth:           a.Auth,
		Validator:      a.JWT,
		Submissions:    a.Submissions,
		Payments:       a.Payments,
		Stores:         a.Stores,
		Uploads:        a.Uploads,
	})

	var wg sync.WaitGroup
	if cfg.Worker.RelayInServer {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.RunRelay(ctx, a.Relay, cfg.Worker.OutboxPollInterval, log)
		}()
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.HTTP.Port, "relay_in_server", cfg.Worker.RelayInServer)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	cancel()
	wg.Wait()

	log.Info("server stopped")
}
