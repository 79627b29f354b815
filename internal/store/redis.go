package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis stores values in a Redis instance shared by several clients of the same
// player, e.g. a kiosk fleet. Keys are namespaced as "<prefix>:<key>".
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedis wraps an existing client. An empty prefix defaults to ServiceName.
func NewRedis(rdb redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = ServiceName
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return NewRedis(rdb, prefix), nil
}

func (r *Redis) key(k string) string { return r.prefix + ":" + k }

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, r.key(key), value, 0).Err()
}

func (r *Redis) Unset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error { return r.rdb.Close() }
