package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justsurfingit/placement-portal/internal/auth"
	"github.com/justsurfingit/placement-portal/internal/config"
	"github.com/justsurfingit/placement-portal/internal/database"
	"github.com/justsurfingit/placement-portal/internal/events"
	"github.com/justsurfingit/placement-portal/internal/handlers"
	"github.com/justsurfingit/placement-portal/internal/services"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func main() {
	ctx := context.Background()

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Database Connection
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	// 3. LLM client. Missing credentials are not fatal: extraction returns an error
	// and the rest of the API keeps working.
	model, err := services.NewGeminiModel(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		log.Printf("⚠️  %v", err)
	} else {
		log.Printf("✅ Gemini client ready (%s)", cfg.LLM.Model)
	}
	llmService := services.NewLLMService(model)

	// 4. Event publishing
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, job events disabled: %v", err)
		} else {
			defer rdb.Close()
			publisher = events.NewRedisPublisher(rdb)
			log.Println("✅ Redis connected, publishing job events.")
		}
	}

	// 5. Gmail notifications
	var notifier services.Notifier = services.NopNotifier{}
	if cfg.Gmail.Enabled {
		log.Println("Initializing Gmail Client...")
		httpClient, err := auth.GetGmailClient(ctx, cfg.Gmail.CredentialsFile, cfg.Gmail.TokenFile)
		if err != nil {
			log.Printf("⚠️  Gmail disabled: %v", err)
		} else if gmailService, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient)); err != nil {
			log.Printf("⚠️  Failed to create Gmail Service: %v", err)
		} else {
			notifier = services.NewEmailService(gmailService, cfg.Gmail.From)
			log.Println("✅ Gmail Service connected successfully.")
		}
	}

	// 6. Services and handlers
	userService := services.NewUserService(db)
	jobService := services.NewJobService(db)
	matcherService := services.NewMatcherService(db, cfg.MatchMode == config.MatchModeMemory)
	fetcher := services.NewDescriptionFetcher(cfg.FetchTimeout)
	postingService := services.NewPostingService(db, llmService, fetcher, matcherService, publisher, notifier)

	authHandler := handlers.NewAuthHandler(userService)
	jobHandler := handlers.NewJobHandler(postingService, jobService, userService)

	// 7. Router
	r := handlers.NewRouter(authHandler, jobHandler, userService)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("🚀 Server starting on port %s (matching mode: %s)...", cfg.Port, cfg.MatchMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	// 8. Graceful shutdown, letting queued notifications finish
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Shutdown error: %v", err)
	}

	drained := make(chan struct{})
	go func() {
		postingService.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		log.Println("✅ Notifications drained.")
	case <-shutdownCtx.Done():
		log.Println("⚠️  Gave up waiting for notifications.")
	}
}
