package services

import (
	"context"
	"errors"
	"log"
	"time"

	"taskerhub/backend/internal/cache"
	"taskerhub/backend/internal/repositories"

	"github.com/gofrs/uuid"
)

const cacheTTL = 10 * time.Minute

// ListResult is one page of a collection plus the number of documents that
// matched before paging.
type ListResult[T any] struct {
	Items []T
	Total int64
}

func list[T any](ctx context.Context, repo repositories.Repository[T], q repositories.Query) (*ListResult[T], error) {
	items, err := repo.Find(ctx, q)
	if err != nil {
		return nil, Internal(err)
	}

	total, err := repo.Count(ctx, repositories.Query{Conditions: q.Conditions})
	if err != nil {
		return nil, Internal(err)
	}
	return &ListResult[T]{Items: items, Total: total}, nil
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

func profileTag(id uuid.UUID) string { return "profile:" + id.String() }
func taskTag(id uuid.UUID) string    { return "task:" + id.String() }

// Cache failures never fail a request; they are logged and the store is
// used instead.
func cacheGet(ctx context.Context, c cache.Cache, key string, dest interface{}) bool {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("Cache get %s failed: %v", key, err)
	}
	return false
}

func cacheSet(ctx context.Context, c cache.Cache, key string, value interface{}, tags ...string) {
	if err := c.Set(ctx, key, value, cacheTTL, tags...); err != nil {
		log.Printf("Cache set %s failed: %v", key, err)
	}
}

func cacheInvalidate(ctx context.Context, c cache.Cache, tags ...string) {
	if err := c.InvalidateByTag(ctx, tags...); err != nil {
		log.Printf("Cache invalidation %v failed: %v", tags, err)
	}
}
