package main

import (
	"context"
	"fmt"
	"log"

	"taskerhub/backend/internal/cache"
	"taskerhub/backend/internal/config"
	"taskerhub/backend/internal/database"
	"taskerhub/backend/internal/geocoder"
	"taskerhub/backend/internal/monitoring"
	"taskerhub/backend/internal/repositories"

	"gorm.io/gorm/logger"
)

// backend is an opened Store together with the hooks that report on it.
type backend struct {
	store   repositories.Store
	stats   monitoring.StatsFunc
	migrate func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Store.Backend {
	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, database.MongoConfig{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
			MaxPoolSize:    cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return nil, err
		}
		store := repositories.NewMongoStore(client, cfg.Mongo.Database)
		return &backend{
			store: store,
			stats: func() interface{} {
				return map[string]interface{}{"backend": "mongo", "database": cfg.Mongo.Database}
			},
			migrate: store.EnsureIndexes,
		}, nil

	case config.StoreGorm:
		pool, err := database.NewDatabasePool(&database.PoolConfig{
			Driver:          cfg.Database.Driver,
			DSN:             cfg.GetDatabaseDSN(),
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
			LogLevel:        gormLogLevel(cfg.Database.LogLevel),
		})
		if err != nil {
			return nil, err
		}
		store := repositories.NewGormStore(pool.DB)
		return &backend{
			store: store,
			stats: func() interface{} { return pool.Stats() },
			migrate: func(context.Context) error {
				return store.AutoMigrate()
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// openCache returns a Redis-backed cache, or a no-op cache when Redis is
// disabled or unreachable at startup.
func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, monitoring.StatsFunc) {
	if !cfg.Redis.Enabled {
		log.Println("Redis disabled, responses will not be cached")
		return cache.NopCache{}, nil
	}

	rc := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		KeyPrefix:    cfg.Redis.KeyPrefix,
	})
	if err := rc.Health(ctx); err != nil {
		log.Printf("Redis at %s unavailable, continuing without cache: %v", cfg.GetRedisAddr(), err)
		rc.Close()
		return cache.NopCache{}, nil
	}
	log.Printf("Redis cache ready at %s", cfg.GetRedisAddr())
	return rc, func() interface{} { return rc.Stats() }
}

func newGeocoder(cfg *config.Config) (geocoder.Geocoder, monitoring.StatsFunc, error) {
	if cfg.Geocoder.Provider == config.GeocoderStatic {
		log.Println("Using static geocoder")
		return geocoder.Static{}, nil, nil
	}

	mq, err := geocoder.NewMapQuest(geocoder.MapQuestConfig{
		APIKey:  cfg.Geocoder.APIKey,
		BaseURL: cfg.Geocoder.BaseURL,
		Timeout: cfg.Geocoder.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return mq, func() interface{} { return mq.Stats() }, nil
}
