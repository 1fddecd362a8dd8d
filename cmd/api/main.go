package main

import (
	"context"
	"log"
	"time"

	"breeze-chat/config"
	"breeze-chat/internal/domain/user"
	"breeze-chat/internal/handler"
	"breeze-chat/internal/redis"
	"breeze-chat/internal/repository"
	"breeze-chat/internal/router"
	"breeze-chat/internal/server"
	"breeze-chat/internal/services"
	"breeze-chat/internal/storage"
	"breeze-chat/internal/websocket"
	"breeze-chat/pkg/database"
	"breeze-chat/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	defer l.Sync()

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.DB.AutoMigrate(
		&user.User{},
		&user.Group{},
		&user.Friendship{},
		&user.Expression{},
	); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database.DB)
	groupRepo := repository.NewGroupRepository(database.DB)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.EnsureDefaultGroup(ctx, groupRepo); err != nil {
		log.Fatalf("Failed to seed default group: %v", err)
	}

	s3Client, err := storage.NewClient(ctx, storage.S3Config{
		Region:     cfg.S3Region,
		Bucket:     cfg.S3Bucket,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		Endpoint:   cfg.S3Endpoint,
		PublicBase: cfg.S3PublicBase,
	})
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	var redisClient *goredis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
	}
	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())
	presence := redis.NewPresenceStore(redisClient, 5*time.Minute)

	authService := services.NewAuthService(cfg)
	avatarService := services.NewAvatarService(s3Client, cfg.AvatarSize)
	userHandler := handler.NewUserHandler(userRepo, groupRepo, authService, avatarService, l)

	routes := router.New()
	userHandler.RegisterRoutes(routes)

	dispatcher := router.NewDispatcher(routes, l)
	dispatcher.Use(authService.Middleware())

	hub := websocket.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	wsHandler := websocket.NewHandler(authService, hub, dispatcher, limiter, presence, l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(wsHandler)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
}
