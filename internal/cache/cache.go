// Package cache is the read-through cache used by the profile and task
// services. Entries carry tags so a whole family of keys can be dropped at
// once, for example every task cached under one profile after a cascade.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheDown = errors.New("cache unavailable")
)

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error
	Delete(ctx context.Context, keys ...string) error
	InvalidateByTag(ctx context.Context, tags ...string) error
	Health(ctx context.Context) error
	Close() error
}

// NopCache never stores anything. It is used when Redis is disabled.
type NopCache struct{}

func (NopCache) Get(context.Context, string, interface{}) error { return ErrCacheMiss }
func (NopCache) Set(context.Context, string, interface{}, time.Duration, ...string) error {
	return nil
}
func (NopCache) Delete(context.Context, ...string) error          { return nil }
func (NopCache) InvalidateByTag(context.Context, ...string) error { return nil }
func (NopCache) Health(context.Context) error                     { return nil }
func (NopCache) Close() error                                     { return nil }
