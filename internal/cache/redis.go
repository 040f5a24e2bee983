package cache

import (
	"context"
	"encoding/json"
	"time"

	"stockroom/internal/model"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// RedisProductCache stores product records as JSON under "product:<id>" with
// a fixed TTL.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProductCache creates a redis-backed product cache.
func NewRedisProductCache(addr, password string, db int, ttl time.Duration) *RedisProductCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisProductCache{client: client, ttl: ttl}
}

// Ping verifies the redis connection.
func (c *RedisProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func productKey(id uuid.UUID) string {
	return "product:" + id.String()
}

func (c *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*model.Product, bool, error) {
	val, err := c.client.Get(ctx, productKey(id)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var p model.Product
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

func (c *RedisProductCache) Set(ctx context.Context, product *model.Product) error {
	if product == nil {
		return nil
	}
	payload, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productKey(product.ID), payload, c.ttl).Err()
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, productKey(id)).Err()
}

func (c *RedisProductCache) Close() error {
	return c.client.Close()
}
