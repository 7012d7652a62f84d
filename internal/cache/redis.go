package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Skotchmaster/peptide_shop/internal/transport"
	"github.com/redis/go-redis/v9"
)

const versionKey = "catalog:listing:version"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

// RedisCache keys pages under a version counter, so invalidation is a single
// INCR and stale pages simply expire.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) version(ctx context.Context) (int64, error) {
	v, err := r.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get version failed: %w", err)
	}
	return v, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (*transport.ProductPage, error) {
	v, err := r.version(ctx)
	if err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, cacheKey(v, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var page transport.ProductPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("unmarshal page failed: %w", err)
	}
	return &page, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, page *transport.ProductPage) error {
	v, err := r.version(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal page failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(60)) * time.Second
	if err := r.client.Set(ctx, cacheKey(v, key), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context) error {
	if err := r.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	return nil
}

func cacheKey(version int64, key string) string {
	return fmt.Sprintf("catalog:listing:v%d:%s", version, key)
}

// ListingKey names one page of the public listing.
func ListingKey(category string, page, size int) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("%s:%d:%d", category, page, size)
}
