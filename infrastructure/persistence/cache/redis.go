package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned when the key is absent from Redis.
var ErrCacheMiss = errors.New("cache miss")

// Cache abstracts the caching backend
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Fill stores value only when key is absent and tombstone is not set.
	// It reports whether the value was stored.
	Fill(ctx context.Context, key, tombstone string, value []byte, ttl time.Duration) (bool, error)
}

// fillScript sets KEYS[1] unless KEYS[2] exists, in one round trip.
var fillScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
if redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2], "NX") then
	return 1
end
return 0
`)

// RedisCache implements Cache on a go-redis client.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing client
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns ErrCacheMiss for a missing key
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set stores value under key for ttl
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes key
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Fill runs the conditional set as a Lua script so the tombstone check and
// the write cannot interleave with a concurrent delete.
func (c *RedisCache) Fill(ctx context.Context, key, tombstone string, value []byte, ttl time.Duration) (bool, error) {
	stored, err := fillScript.Run(ctx, c.client, []string{key, tombstone}, value, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}
