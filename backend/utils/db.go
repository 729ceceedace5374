package utils

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"learnhub/backend/config"
	"learnhub/backend/lms"
	"learnhub/backend/logger"
	"learnhub/backend/storage/gormstore"
	"learnhub/backend/storage/memstore"
	"learnhub/backend/storage/mongostore"
	"learnhub/backend/storage/rediscache"
)

// InitDB opens the SQL database selected by STORAGE_DRIVER.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StorageDriver {
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("storage driver %q is not a SQL driver", cfg.StorageDriver)
	}

	level := gormLogger.Warn
	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		level = gormLogger.Error
	}
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(level),
	})
}

// OpenStore returns the gateway for the configured driver and a function
// that releases it.
func OpenStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (lms.Gateway, func(), error) {
	switch cfg.StorageDriver {
	case "memory":
		log.Warn("using in-memory storage, data is lost on restart")
		return memstore.New(), func() {}, nil

	case "postgres", "sqlite":
		db, err := InitDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		store := gormstore.New(db, log)
		if err := store.Migrate(); err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return store, closeFn, nil

	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := mongostore.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase, log)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = store.Disconnect(ctx)
		}
		return store, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// OpenSummaryCache connects to redis when REDIS_URL is set. Without it the
// review service runs uncached and the returned cache is nil.
func OpenSummaryCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (lms.SummaryCache, func(), error) {
	if cfg.RedisURL == "" {
		return nil, func() {}, nil
	}
	cache, err := rediscache.Connect(ctx, cfg.RedisURL, cfg.SummaryCacheTTL, log)
	if err != nil {
		return nil, nil, err
	}
	return cache, func() { _ = cache.Close() }, nil
}
