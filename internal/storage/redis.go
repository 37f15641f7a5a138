package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// setMaxScript stores ARGV[1] under KEYS[1] unless a larger value exists.
var setMaxScript = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]))
local v = tonumber(ARGV[1])
if cur == nil or v > cur then
  redis.call("SET", KEYS[1], v)
  return 1
end
return 0
`)

// RedisStore shares best scores between hosts through Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Backend = (*RedisStore)(nil)

// OpenRedis connects to Redis. dsn is either a redis:// URL or host:port.
// Keys are namespaced with "taprunner:".
func OpenRedis(ctx context.Context, dsn string) (*RedisStore, error) {
	var opts *redis.Options
	if strings.HasPrefix(dsn, "redis://") || strings.HasPrefix(dsn, "rediss://") {
		parsed, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		if dsn == "" {
			dsn = "localhost:6379"
		}
		opts = &redis.Options{Addr: dsn}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("storage: cannot connect to redis: %w", err)
	}
	return &RedisStore{client: client, prefix: "taprunner:"}, nil
}

// Get returns the value stored under key.
func (r *RedisStore) Get(ctx context.Context, key string) (int, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot read %q: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key unless a larger value is already stored.
// The compare and set runs atomically on the server.
func (r *RedisStore) Set(ctx context.Context, key string, value int) error {
	if err := setMaxScript.Run(ctx, r.client, []string{r.prefix + key}, value).Err(); err != nil {
		return fmt.Errorf("storage: cannot write %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("storage: cannot delete %q: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
