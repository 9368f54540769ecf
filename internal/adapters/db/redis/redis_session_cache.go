package redis

import (
	"context"
	"errors"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/redis/go-redis/v9"
)

type RedisSessionCache struct {
	client *redis.Client
}

func NewRedisSessionCache(client *redis.Client) *RedisSessionCache {
	return &RedisSessionCache{
		client: client,
	}
}

func (r *RedisSessionCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return customErrors.NewInvalidArgument("ttl must be positive")
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return customErrors.WrapInternal(err, "cache set")
	}
	return nil
}

func (r *RedisSessionCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, customErrors.ErrNotFound
	case err != nil:
		return nil, customErrors.WrapInternal(err, "cache get")
	default:
		return val, nil
	}
}

// Delete is a no-op for a missing key.
func (r *RedisSessionCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return customErrors.WrapInternal(err, "cache delete")
	}
	return nil
}

func (r *RedisSessionCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
