package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "whub:apikey:"

// RedisKeyring shares selected keys across gateway replicas.
type RedisKeyring struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisKeyring(client *redis.Client, ttl time.Duration) *RedisKeyring {
	return &RedisKeyring{client: client, ttl: ttl}
}

// NewRedisKeyringFromURL parses a redis:// URL and pings the server.
func NewRedisKeyringFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisKeyring, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisKeyring(client, ttl), nil
}

func (k *RedisKeyring) Get(ctx context.Context, sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}
	v, err := k.client.Get(ctx, redisKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

func (k *RedisKeyring) Put(ctx context.Context, sessionID, key string) error {
	sessionID = strings.TrimSpace(sessionID)
	key = strings.TrimSpace(key)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if key == "" {
		return fmt.Errorf("api key is required")
	}
	if err := k.client.Set(ctx, redisKeyPrefix+sessionID, key, k.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (k *RedisKeyring) Delete(ctx context.Context, sessionID string) error {
	if err := k.client.Del(ctx, redisKeyPrefix+strings.TrimSpace(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (k *RedisKeyring) Close() error {
	return k.client.Close()
}
