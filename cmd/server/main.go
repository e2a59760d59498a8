package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"axiom-backend/internal/config"
	"axiom-backend/internal/database"
	"axiom-backend/internal/handlers"
	"axiom-backend/internal/logger"
	"axiom-backend/internal/middleware"
	"axiom-backend/internal/repository"
	"axiom-backend/internal/router"
	"axiom-backend/internal/services"
	"axiom-backend/migrations"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("✗ Invalid configuration: %v", err)
	}

	appLog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("starting Axiom backend", "env", cfg.Env, "provider", cfg.LLMProvider)

	ctx := context.Background()

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("postgres connection failed", "error", err)
	}
	defer pool.Close()
	appLog.Info("postgres connected")

	// ──── Step 3: Run Database Migrations ────
	if err := database.RunMigrations(ctx, pool, migrations.FS, appLog); err != nil {
		appLog.Fatal("database migration failed", "error", err)
	}

	// ──── Step 4: Initialize the Tutor Model ────
	var model services.TutorModel
	switch cfg.LLMProvider {
	case "openrouter":
		model = services.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
		appLog.Info("openrouter client initialized", "model", cfg.OpenRouterModel)
	default:
		gemini, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs)
		if err != nil {
			appLog.Fatal("gemini client initialization failed", "error", err)
		}
		defer gemini.Close()
		model = gemini
		appLog.Info("gemini client initialized", "model", cfg.GeminiModel)
	}

	// ──── Step 5: Wire Services and Handlers ────
	userRepo := repository.NewUserRepo(pool)
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, cfg.AccessTokenExpiry, userRepo)

	chatLimiter := middleware.NewRateLimiter(cfg.ChatRateLimit, cfg.ChatRateWindow)
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)

	authService := services.NewAuthService(userRepo, jwtAuth)
	tutorService := services.NewTutorService(chatLimiter, model, appLog.With("component", "tutor"), cfg.MaxImageBytes)

	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(tutorService, cfg.MaxImageBytes)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(appLog, jwtAuth, authLimiter, authHandler, chatHandler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // model calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		appLog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	appLog.Info("Axiom backend ready", "addr", fmt.Sprintf("http://localhost:%s", cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		appLog.Fatal("server error", "error", err)
	}
}
