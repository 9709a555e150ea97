package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/susdigest/internal/api"
	"github.com/dgallion1/susdigest/internal/config"
	"github.com/dgallion1/susdigest/internal/extract"
	"github.com/dgallion1/susdigest/internal/pipeline"
	"github.com/dgallion1/susdigest/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err == nil {
		err = cfg.ValidateServer()
	}
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	results, err := store.Open(ctx, cfg.DatabaseURL, cfg.RedisURL, cfg.ResultTTL, log)
	if err != nil {
		log.Error("result store unavailable", "error", err)
		os.Exit(1)
	}
	stats := extract.NewLLMStats(time.Hour)
	pipe, closeLLM, err := pipeline.Build(ctx, cfg, stats, log)
	if err != nil {
		log.Error("pipeline setup failed", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, pipe, results, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		closeLLM()
		results.Close()
	}()

	log.Info("starting susdigest", "port", cfg.Port, "model", pipe.Model())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
