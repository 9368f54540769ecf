package redis

import (
	"context"
	"testing"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*RedisSessionCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redisv9.NewClient(&redisv9.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionCache(client), mr
}

func TestRedisSessionCache_SetGet(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k1", []byte(`{"a":1}`), time.Minute))

	got, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(got))
	require.Equal(t, time.Minute, mr.TTL("k1"))
}

func TestRedisSessionCache_Missing(t *testing.T) {
	cache, _ := newCache(t)

	_, err := cache.Get(context.Background(), "nope")
	require.True(t, customErrors.IsNotFound(err))
}

func TestRedisSessionCache_Expiry(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k2", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "k2")
	require.True(t, customErrors.IsNotFound(err))
}

func TestRedisSessionCache_Overwrite(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k3", []byte("old"), time.Minute))
	mr.FastForward(50 * time.Second)
	require.NoError(t, cache.Set(ctx, "k3", []byte("new"), time.Minute))
	mr.FastForward(30 * time.Second)

	got, err := cache.Get(ctx, "k3")
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

func TestRedisSessionCache_Delete(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k4", []byte("v"), time.Minute))
	require.NoError(t, cache.Delete(ctx, "k4"))
	require.NoError(t, cache.Delete(ctx, "k4"))

	_, err := cache.Get(ctx, "k4")
	require.True(t, customErrors.IsNotFound(err))
}

func TestRedisSessionCache_BadTTL(t *testing.T) {
	cache, _ := newCache(t)
	err := cache.Set(context.Background(), "k5", []byte("v"), 0)
	require.True(t, customErrors.IsInvalidArgument(err))
}

func TestRedisSessionCache_BackendDown(t *testing.T) {
	cache, mr := newCache(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "k")
	require.True(t, customErrors.IsInternal(err))
	require.Error(t, cache.Ping(context.Background()))
}
