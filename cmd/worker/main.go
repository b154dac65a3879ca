// Package main is the entry point for the confhub background worker.
// It relays outbox e-mails and runs the scheduled maintenance jobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"

	"confhub/internal/app"
	"confhub/internal/config"
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
		Service:     "confhub-worker",
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

	log.Info("starting confhub worker")

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	jobs := app.NewJobs(a.Stores.Ledger, a.Relay, log)
	if _, err := scheduler.AddFunc(cfg.Worker.LedgerSweepCron, func() { jobs.LedgerSweep(ctx) }); err != nil {
		log.Fatalw("invalid ledger sweep schedule", "cron", cfg.Worker.LedgerSweepCron, "error", err)
	}
	if _, err := scheduler.AddFunc(cfg.Worker.OutboxPruneCron, func() { jobs.OutboxPrune(ctx) }); err != nil {
		log.Fatalw("invalid outbox prune schedule", "cron", cfg.Worker.OutboxPruneCron, "error", err)
	}
	scheduler.Start()
	log.Infow("scheduler started",
		"ledger_sweep", cfg.Worker.LedgerSweepCron,
		"outbox_prune", cfg.Worker.OutboxPruneCron)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.RunRelay(ctx, a.Relay, cfg.Worker.OutboxPollInterval, log)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	stopped := scheduler.Stop()
	cancel()
	<-stopped.Done()
	wg.Wait()
	log.Info("worker stopped")
}
