package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/keyfold/keyfold/internal/api"
	"github.com/keyfold/keyfold/internal/factory"
	"github.com/keyfold/keyfold/internal/mailer"
	sessionredis "github.com/keyfold/keyfold/internal/session/redis"
)

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:           logger,
		StoreType:        os.Getenv("STORE_TYPE"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SessionStoreType: os.Getenv("SESSION_STORE_TYPE"),
		MailerConfig: mailer.Config{
			APIKey:      os.Getenv("SENDGRID_API_KEY"),
			FromAddress: os.Getenv("RESET_FROM_ADDRESS"),
		},
	}

	// Configure Redis if the session store type is redis
	if cfg.SessionStoreType == factory.SessionStoreTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when SESSION_STORE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := sessionredis.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create application factory
	app, err := factory.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Evict expired sessions in the background
	go app.Sessions.SweepLoop(ctx)

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Accounts: app.Accounts,
		Sessions: app.Sessions,
		Mailer:   app.Mailer,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			serverConfig.Port = p
		}
	}
	server := api.NewServer(router, serverConfig, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
