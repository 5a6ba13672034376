package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/yashith03/portfolio/internal/api"
	"github.com/yashith03/portfolio/internal/config"
	"github.com/yashith03/portfolio/internal/github"
	"github.com/yashith03/portfolio/internal/portfolio"
	"github.com/yashith03/portfolio/internal/widget"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if cfg.IsDevelopment() {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if cfg.GitHubToken == "" {
		log.Println("warning: GITHUB_TOKEN not set, contribution widget will fail to load")
	}

	data, err := portfolio.Load()
	if err != nil {
		log.Fatalf("Failed to load portfolio data: %v", err)
	}

	graphqlClient := github.NewGraphQLClient(cfg.GitHubToken,
		github.WithEndpoint(cfg.GitHubGraphQL),
		github.WithTimeout(cfg.HTTPTimeout),
	)

	registry := widget.NewRegistry(graphqlClient, cfg.WidgetTTL)
	log.Printf("Widget registry started (ttl %s)", cfg.WidgetTTL)

	routerResult := api.NewRouter(&api.RouterConfig{
		Registry: registry,
		Fetcher:  graphqlClient,
		Page:     &portfolio.Page{Data: data, Username: cfg.GitHubUsername},
		Username: cfg.GitHubUsername,

		CORSOrigins: cfg.CORSOrigins,
		CORSAll:     cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routerResult.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s (github user %s)", cfg.Port, cfg.GitHubUsername)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	log.Println("Stopping rate limiters...")
	routerResult.RateLimiters.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Views are closed after the last handler returns
	log.Println("Unmounting widget views...")
	registry.Stop()

	log.Println("Server exited")
}
