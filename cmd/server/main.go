package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Davidi18/Schema-API-Full/internal/api"
	"github.com/Davidi18/Schema-API-Full/internal/config"
	"github.com/Davidi18/Schema-API-Full/internal/fetch"
	"github.com/Davidi18/Schema-API-Full/internal/schema"
	"github.com/Davidi18/Schema-API-Full/internal/sitemap"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	stats := fetch.NewLatencyStats(cfg.StatsWindow)
	fetcher := fetch.New(cfg.UserAgent, cfg.MaxFetchBytes, stats)

	// Initialize services.
	sitemaps := sitemap.NewService(fetcher, sitemap.ServiceConfig{
		FetchTimeout:   cfg.SitemapFetchTimeout,
		ClusterTimeout: cfg.PageFetchTimeout,
		MaxBytes:       cfg.MaxFetchBytes,
	}, log)
	schemas := schema.NewGenerator(fetcher, cfg.PageFetchTimeout, log)

	// Initialize HTTP server.
	srv := api.NewServer(sitemaps, schemas, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.SitemapFetchTimeout + cfg.BacklogTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		fetcher.Close()
	}()

	log.Info("starting schema-api", "port", cfg.Port, "service", cfg.ServiceName, "version", cfg.Version)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
