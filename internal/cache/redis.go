package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskerhub/backend/internal/breaker"

	"github.com/redis/go-redis/v9"
)

const opTimeout = 3 * time.Second

var _ Cache = (*RedisCache)(nil)

type RedisCache struct {
	client  *redis.Client
	prefix  string
	breaker *breaker.Breaker
	metrics *CacheMetrics
}

type CacheConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	KeyPrefix    string
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		KeyPrefix:    "taskerhub:",
	}
}

func NewRedisCache(config *CacheConfig) *RedisCache {
	if config == nil {
		config = DefaultCacheConfig()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	return &RedisCache{
		client:  rdb,
		prefix:  config.KeyPrefix,
		breaker: breaker.New(breaker.DefaultConfig("redis")),
		metrics: NewCacheMetrics(),
	}
}

func (r *RedisCache) key(k string) string    { return r.prefix + k }
func (r *RedisCache) tagKey(t string) string { return r.prefix + "tag:" + t }

// do runs fn through the breaker with the per-operation timeout. An open
// breaker is reported as ErrCacheDown.
func (r *RedisCache) do(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := r.breaker.Execute(func() error {
		err := fn(ctx)
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if errors.Is(err, breaker.ErrOpen) {
		return ErrCacheDown
	}
	return err
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	var data []byte
	err := r.do(ctx, func(ctx context.Context) error {
		var err error
		data, err = r.client.Get(ctx, r.key(key)).Bytes()
		return err
	})
	if err != nil {
		r.metrics.RecordError()
		return fmt.Errorf("failed to get from cache: %w", err)
	}
	if data == nil {
		r.metrics.RecordMiss()
		return ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		r.metrics.RecordError()
		return fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	r.metrics.RecordHit()
	return nil
}

// Set stores value under key and registers key in each tag set.
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	err = r.do(ctx, func(ctx context.Context) error {
		pipe := r.client.TxPipeline()
		pipe.Set(ctx, r.key(key), data, ttl)
		for _, tag := range tags {
			tk := r.tagKey(tag)
			pipe.SAdd(ctx, tk, key)
			pipe.Expire(ctx, tk, ttl)
		}
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		r.metrics.RecordError()
		return fmt.Errorf("failed to set cache: %w", err)
	}
	r.metrics.RecordSet()
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}

	err := r.do(ctx, func(ctx context.Context) error {
		return r.client.Del(ctx, full...).Err()
	})
	if err != nil {
		r.metrics.RecordError()
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	r.metrics.RecordDelete()
	return nil
}

func (r *RedisCache) InvalidateByTag(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tk := r.tagKey(tag)
		err := r.do(ctx, func(ctx context.Context) error {
			members, err := r.client.SMembers(ctx, tk).Result()
			if err != nil {
				return err
			}

			doomed := make([]string, 0, len(members)+1)
			for _, m := range members {
				doomed = append(doomed, r.key(m))
			}
			doomed = append(doomed, tk)
			return r.client.Del(ctx, doomed...).Err()
		})
		if err != nil {
			r.metrics.RecordError()
			return fmt.Errorf("failed to invalidate tag %s: %w", tag, err)
		}
		r.metrics.RecordDelete()
	}
	return nil
}

func (r *RedisCache) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Metrics() *CacheMetrics {
	return r.metrics
}

func (r *RedisCache) Stats() map[string]interface{} {
	poolStats := r.client.PoolStats()
	snapshot := r.metrics.GetStats()

	return map[string]interface{}{
		"hits":          snapshot.Hits,
		"misses":        snapshot.Misses,
		"errors":        snapshot.Errors,
		"hit_rate":      r.metrics.HitRate(),
		"breaker":       r.breaker.Stats(),
		"pool_hits":     poolStats.Hits,
		"pool_misses":   poolStats.Misses,
		"pool_timeouts": poolStats.Timeouts,
		"pool_total":    poolStats.TotalConns,
		"pool_idle":     poolStats.IdleConns,
	}
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
