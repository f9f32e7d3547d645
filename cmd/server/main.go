package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docsense/docsense/internal/analyze"
	"github.com/docsense/docsense/internal/api"
	"github.com/docsense/docsense/internal/backend"
	"github.com/docsense/docsense/internal/config"
	"github.com/docsense/docsense/internal/extract"
	"github.com/docsense/docsense/internal/registry"
	"github.com/docsense/docsense/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn("config file ignored", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	bc := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout.Duration)

	engine := extract.NewEngine(extract.NewPDFSource(bc), extract.Limits{
		SamplePages:     cfg.Analysis.SamplePages,
		FullPages:       cfg.Analysis.FullPages,
		SampleCharLimit: cfg.Analysis.SampleCharLimit,
	}, log)

	reg := registry.New(bc)
	sess := session.New()
	orch := analyze.NewOrchestrator(engine, bc, sess, cfg.Analysis, log)

	// Warm the registry; the backend may simply not be up yet.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := reg.Refresh(warmCtx); err != nil {
		log.Warn("initial document listing failed", "error", err)
	}
	warmCancel()

	srv := api.NewServer(orch, reg, sess, bc, log, cfg)

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

		bc.Close()
	}()

	log.Info("starting docsense", "port", cfg.Port, "backend", cfg.Backend.URL)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
