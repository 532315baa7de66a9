package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/MiguelSairitupa/voznota/internal/api"
	"github.com/MiguelSairitupa/voznota/internal/config"
	"github.com/MiguelSairitupa/voznota/internal/metrics"
	"github.com/MiguelSairitupa/voznota/internal/store"
	"github.com/MiguelSairitupa/voznota/internal/transcribe"
)

var version = "dev"

func main() {
	startTime := time.Now()

	var overrides config.Overrides
	flag.StringVar(&overrides.EnvFile, "env-file", "", "path to a .env file to load before reading the environment")
	flag.StringVar(&overrides.HTTPAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flag.Parse()

	// Config
	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	// Logger
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("voznota-api starting")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Document store
	storeLog := log.With().Str("component", "cloudant").Logger()
	st, err := store.Connect(ctx, cfg.CloudantURL, cfg.CloudantDBName, cfg.CloudantTimeout, storeLog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to cloudant")
	}

	// Scrape-time gauges read live totals from the store.
	prometheus.MustRegister(metrics.NewCollector(st))

	// Speech to text
	watson := transcribe.NewWatsonClient(cfg.WatsonURL, cfg.WatsonAPIKey, cfg.WatsonModel, cfg.WatsonTimeout)
	log.Info().Str("provider", watson.Name()).Str("model", watson.Model()).Msg("transcription provider ready")

	// HTTP Server
	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(cfg, watson, st, version, startTime, httpLog)

	// Start HTTP server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	// Graceful shutdown with 10s timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("voznota-api stopped")
}
