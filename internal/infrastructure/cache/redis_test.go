package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func unreachableCache() *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	return NewRedisCache(client)
}

func TestRedisCache_SurfacesConnectionErrors(t *testing.T) {
	c := unreachableCache()
	ctx := context.Background()

	var dest map[string]string
	found, err := c.Get(ctx, "books:detail:x", &dest)
	assert.False(t, found)
	assert.Error(t, err)

	assert.Error(t, c.Set(ctx, "books:detail:x", map[string]string{"a": "b"}, time.Minute))
	assert.Error(t, c.Delete(ctx, "books:detail:x"))
	assert.Error(t, c.Ping(ctx))
}

func TestRedisCache_DeleteWithoutKeysIsNoop(t *testing.T) {
	assert.NoError(t, unreachableCache().Delete(context.Background()))
}

func TestRedisCache_SetRejectsUnencodableValue(t *testing.T) {
	err := unreachableCache().Set(context.Background(), "k", make(chan int), time.Minute)
	assert.ErrorContains(t, err, "redis encode")
}
