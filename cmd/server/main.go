// ABOUTME: Main entry point for the deal recap HTTP server
// ABOUTME: Opens the session store, seeds it, and serves the API with graceful shutdown
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/atstrading/dealrecap/internal/api"
	"github.com/atstrading/dealrecap/internal/config"
	"github.com/atstrading/dealrecap/internal/core"
	"github.com/atstrading/dealrecap/internal/llm"
	"github.com/atstrading/dealrecap/internal/session"
	"github.com/atstrading/dealrecap/internal/store"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, err := session.NewClient(&session.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}

	st := store.New(client)
	defer st.Close()

	if err := st.Initialize(); err != nil {
		log.Fatalf("Failed to initialize session: %v", err)
	}

	// Extraction degrades to 503 responses when no API key is configured.
	var assembler *core.Assembler
	modelClient, err := llm.New(cfg)
	if err != nil {
		log.Printf("Warning: %v - extraction endpoints will be unavailable", err)
		assembler = core.NewAssembler(st, nil, nil, nil)
	} else {
		assembler = core.NewAssembler(st, modelClient, modelClient, modelClient)
	}

	router := api.NewRouter(api.NewAPIHandler(st, assembler))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // model calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", cfg.HTTPAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting gracefully")
}
