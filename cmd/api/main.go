package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logger"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/server"
	"github.com/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}))

	db, err := database.New(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			slog.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("REDIS_ADDR not set, token revocation on logout is disabled")
	}

	var imageStorage service.ImageStorage
	if cfg.S3Bucket != "" {
		s3Config, err := config.NewS3Config(context.Background(), cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			slog.Error("failed to initialize S3", "error", err)
			os.Exit(1)
		}
		imageStorage = service.NewS3ImageStorage(s3Config)
	} else {
		slog.Warn("S3_BUCKET_NAME not set, recipe images are stored inline")
	}

	authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db, imageStorage)
	relationService := service.NewRelationService(db)
	shoppingListService := service.NewShoppingListService(db)

	authHandler := api.NewAuthHandler(authService, relationService)
	recipeHandler := api.NewRecipeHandler(recipeService, relationService, shoppingListService, authService)
	subscriptionHandler := api.NewSubscriptionHandler(relationService, recipeService, authService)
	ingredientHandler := api.NewIngredientHandler(db)
	tagHandler := api.NewTagHandler(db)

	engine := router.SetupRouter(authHandler, recipeHandler, subscriptionHandler, ingredientHandler, tagHandler)
	srv := server.New(engine, cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		slog.Info("received signal, shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
