// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

// Package main is the entry point for the LibraAI recommendation server.
//
// LibraAI serves personalized book recommendations for a library web
// application. It builds reading-taste profiles from borrowing history and
// behavioral interactions, scores catalog candidates against them, and falls
// back to library-wide popularity for users without history.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Initialize DuckDB holding the catalog and interaction history
//  3. Store: Wrap database access in a circuit breaker
//  4. Engine: Construct the recommendation engine from tunables
//  5. HTTP Server: REST API with Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (prefix LIBRAAI_, e.g. LIBRAAI_SERVER_PORT)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (shutdown timeout)
//   - Closes the database connection
//
// # Example Usage
//
// Development with an in-memory catalog:
//
//	export LIBRAAI_DATABASE_PATH=:memory:
//	export LIBRAAI_LOGGING_LEVEL=debug
//	./libraai
//
// Production:
//
//	export LIBRAAI_DATABASE_PATH=/var/lib/libraai/libraai.db
//	export LIBRAAI_SERVER_PORT=8080
//	./libraai
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seannywoot/libraai/internal/api"
	"github.com/seannywoot/libraai/internal/config"
	"github.com/seannywoot/libraai/internal/database"
	"github.com/seannywoot/libraai/internal/logging"
	"github.com/seannywoot/libraai/internal/recommend"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("db_path", cfg.Database.Path).
		Msg("Starting LibraAI recommendation server")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// Circuit breaker protects the engine from a degraded database
	store := database.NewResilientStore(db)

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid recommendation tunables")
	}
	engine, err := recommend.NewEngine(engineCfg, store, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	logging.Info().
		Int("default_limit", engineCfg.Limits.DefaultLimit).
		Int("max_candidates", engineCfg.Limits.MaxCandidates).
		Msg("Recommendation engine ready")

	router := api.NewRouter(
		&cfg.API,
		api.NewRecommendHandler(engine),
		api.NewInteractionsHandler(db),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
