// Package main provides the Verity audit API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamilpajak/verity/internal/agent"
	"github.com/kamilpajak/verity/internal/api"
	"github.com/kamilpajak/verity/internal/audit"
	"github.com/kamilpajak/verity/internal/auth"
	"github.com/kamilpajak/verity/internal/config"
	"github.com/kamilpajak/verity/internal/database"
	"github.com/kamilpajak/verity/internal/llm"
	"github.com/kamilpajak/verity/internal/vectorstore"
)

func main() {
	var (
		cfgPath     = flag.String("config", "", "Path to YAML config file")
		migrateOnly = flag.Bool("migrate", false, "Run migrations and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if cfg.Server.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.Migrate(cfg.Server.DatabaseURL); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations complete")

	if *migrateOnly {
		return
	}

	// Connect to database
	ctx := context.Background()
	db, err := database.New(ctx, cfg.Server.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize auth verifier
	if cfg.Server.AuthIssuer == "" {
		log.Fatal("VERITY_AUTH_ISSUER is required (e.g., https://auth.example.com)")
	}
	authVerifier, err := auth.NewVerifier(auth.Config{
		Issuer:   cfg.Server.AuthIssuer,
		Audience: cfg.Server.AuthAudience,
	})
	if err != nil {
		log.Fatalf("Failed to create auth verifier: %v", err)
	}
	defer authVerifier.Close()

	// Build the audit pipeline
	base, err := llm.New(llm.Options{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to create model client: %v", err)
	}
	client := llm.NewRetryClient(base, llm.RetryConfig{
		MaxAttempts:       cfg.LLM.MaxAttempts,
		BackoffBase:       cfg.LLM.BackoffBase,
		BackoffMultiplier: cfg.LLM.BackoffMultiplier,
		MaxBackoff:        cfg.LLM.MaxBackoff,
	}, cfg.LLM.RequestsPerMinute)

	embedderKey := os.Getenv("GOOGLE_API_KEY")
	if embedderKey == "" && cfg.LLM.Provider == "google" {
		embedderKey = cfg.LLM.APIKey
	}
	embedder := vectorstore.NewGoogleEmbedder(embedderKey)

	index := vectorstore.NewStore(db.Pool(), embedder)
	engine := audit.NewEngine(agent.New(client, index, cfg.Retrieval), embedder, cfg.Audit)

	// Create API server
	server := api.NewServer(api.Config{
		Store:        db,
		Runner:       engine,
		AuthVerifier: authVerifier,
	})
	defer server.Close()

	// Create HTTP server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped")
}
