package main

import (
	"context"
	"flag"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/server"
	"github.com/tastebook/backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		logger.Fatal("failed to init logger", zap.Error(err))
	}
	defer logger.Sync()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		}
	}

	var s3cfg *config.S3Config
	if cfg.S3.Enabled {
		s3cfg, err = config.NewS3Config(context.Background(), cfg.S3)
		if err != nil {
			logger.Warn("s3 unavailable, image uploads disabled", zap.Error(err))
		}
	}

	srv := server.New(cfg, db, redisClient, s3cfg)
	if err := srv.Start(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
