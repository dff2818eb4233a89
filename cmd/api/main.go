package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consensus_valuation/pkg/api/config"
	"consensus_valuation/pkg/api/valuation"
	coreConfig "consensus_valuation/pkg/core/config"
	"consensus_valuation/pkg/core/pipeline"
)

func main() {
	configFile := flag.String("config", "", "Path to the YAML configuration file")
	envFile := flag.String("env", ".env", "Path to the .env file")
	flag.Parse()

	// Load environment variables and configuration
	lookup, err := coreConfig.WithDotEnv(*envFile, os.LookupEnv)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	cfg, err := coreConfig.Load(*configFile, lookup)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	log := cfg.Log.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, cleanup, err := pipeline.FromConfig(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble pipeline")
	}
	defer cleanup()

	mux := http.NewServeMux()

	// Config endpoints
	configHandler := config.NewHandler(orch.Catalogue())
	mux.HandleFunc("/api/config", configHandler.HandleConfig)

	// Valuation endpoints
	valuationHandler := valuation.NewHandler(orch, 2*time.Minute, cfg.Workers, log)
	mux.HandleFunc("/api/valuation/report", valuationHandler.HandleValuationReport)
	mux.HandleFunc("/api/valuation/batch", valuationHandler.HandleBatch)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	fmt.Printf("API server starting on %s...\n", cfg.Server.Addr)
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/valuation/report")
	fmt.Println("  - POST /api/valuation/batch")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("Server stopped")
}
