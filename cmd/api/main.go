package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "github.com/mynews/mynews-api/docs" // Swagger docs (generated)
	"github.com/mynews/mynews-api/internal/auth"
	"github.com/mynews/mynews-api/internal/bookmark"
	"github.com/mynews/mynews-api/internal/config"
	"github.com/mynews/mynews-api/internal/database"
	"github.com/mynews/mynews-api/internal/email"
	httpServer "github.com/mynews/mynews-api/internal/http"
	"github.com/mynews/mynews-api/internal/logging"
	"github.com/mynews/mynews-api/internal/ratelimit"
	"github.com/mynews/mynews-api/internal/user"
)

// @title           My News API
// @version         1.0
// @description     User accounts with email activation plus per-user bookmarks.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	db, err := initDB(cfg.Database, cfg.Server.IsDevelopment())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.CreateSchema(context.Background(), db); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Repositories
	userRepo := user.NewRepository(db)
	bookmarkRepo := bookmark.NewRepository(db)

	// Rate limiter
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Session tokens
	jwtService, err := auth.NewJWTService(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	// Mailer
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromName,
		cfg.Email.AppURL,
	)

	// Services
	authService := auth.NewService(
		userRepo,
		jwtService,
		emailService,
		logger,
		cfg.Auth.TokenDuration,
	)
	bookmarkService := bookmark.NewService(bookmarkRepo)

	// HTTP handlers
	authHandler := auth.NewHandler(authService, rateLimiter, logger)
	authMiddleware := auth.NewMiddleware(jwtService)
	userHandler := user.NewHandler(userRepo)
	bookmarkHandler := bookmark.NewHandler(bookmarkService)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, userHandler, bookmarkHandler, logger)

	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB opens the Postgres connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig, verbose bool) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB, verbose), nil
}

// initRedis opens the Redis connection used by the rate limiter
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
