package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a PageCache backed by a redis server.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// DialRedis parses a redis:// URL, connects and pings the server.
func DialRedis(ctx context.Context, rawURL string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// Get returns the cached body for key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return body, true, nil
}

// Set stores body with the given ttl. Zero ttl keeps the key forever.
func (r *Redis) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, key, body, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the client connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
