package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"customerbooking/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisCache keeps JSON entity snapshots in Redis under a key prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) key(k string) string {
	return r.prefix + k
}

func (r *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if r.client == nil {
		return false, errors.New("redis client is nil")
	}
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value any) error {
	if r.client == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if r.client == nil {
		return errors.New("redis client is nil")
	}
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", key, err)
	}
	return nil
}

func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
