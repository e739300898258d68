package main

import (
	"context"
	"fmt"

	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/cache"
	"github.com/anonto42/future-media/backend/internal/metrics"
	"github.com/anonto42/future-media/backend/internal/repositories"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/anonto42/future-media/backend/pkg/config"
	"github.com/anonto42/future-media/backend/pkg/firebase"
	"github.com/anonto42/future-media/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app is everything a command needs once configuration and connections are up.
type app struct {
	cfg      *config.Config
	db       *config.DB
	redis    *redis.Client
	tokens   *auth.TokenManager
	metrics  *metrics.Metrics
	services *services.Services
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, db: db, tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)}

	deps := services.Deps{
		Repos:             repositories.New(db.Postgres),
		Unread:            cache.Noop{},
		Tokens:            a.tokens,
		StoryTTL:          cfg.StoryTTL,
		FollowerBatchSize: cfg.FollowerBatchSize,
	}

	if cfg.MetricsEnabled {
		a.metrics = metrics.Initialize()
		deps.Metrics = a.metrics
	}

	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Log.Warn("Redis unavailable, unread counts will not be cached", zap.Error(err))
		} else {
			a.redis = client
			deps.Unread = cache.NewRedisUnreadCounts(client, cfg.UnreadCacheTTL)
		}
	}

	if db.Mongo != nil {
		activities := repositories.NewMongoActivityRepository(db.Mongo.Database(cfg.MongoDatabase))
		if err := activities.EnsureIndexes(ctx); err != nil {
			logger.Log.Warn("Failed to create activity indexes", zap.Error(err))
		}
		deps.Activities = activities
	}

	if cfg.FirebaseCredentialsPath != "" {
		fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Firebase = fb
	}

	a.services = services.New(deps)
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Log.Error("Error closing Redis connection", zap.Error(err))
		}
	}
	a.db.CloseDB()
	logger.Sync()
}
