// Package ratelimit tracks failed authentication attempts per client.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultMaxFailures = 5
	DefaultWindow      = 10 * time.Minute
	DefaultBanTTL      = 1 * time.Hour
)

// Limiter decides whether a client may keep trying.
type Limiter interface {
	IsBanned(ctx context.Context, key string) (bool, error)
	RegisterFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// RedisLimiter counts failures with INCR and bans a key once it reaches
// MaxFailures inside Window.
type RedisLimiter struct {
	client      *redis.Client
	prefix      string
	MaxFailures int64
	Window      time.Duration
	BanTTL      time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		prefix:      prefix,
		MaxFailures: DefaultMaxFailures,
		Window:      DefaultWindow,
		BanTTL:      DefaultBanTTL,
	}
}

// NewRedisClient parses url and checks the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (l *RedisLimiter) attemptKey(key string) string {
	return l.prefix + "_attempts:" + key
}

func (l *RedisLimiter) banKey(key string) string {
	return l.prefix + "_ban:" + key
}

func (l *RedisLimiter) IsBanned(ctx context.Context, key string) (bool, error) {
	exists, err := l.client.Exists(ctx, l.banKey(key)).Result()
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

func (l *RedisLimiter) RegisterFailure(ctx context.Context, key string) error {
	attemptKey := l.attemptKey(key)

	attempts, err := l.client.Incr(ctx, attemptKey).Result()
	if err != nil {
		return err
	}
	if attempts == 1 {
		if err := l.client.Expire(ctx, attemptKey, l.Window).Err(); err != nil {
			return err
		}
	}
	if attempts >= l.MaxFailures {
		pipe := l.client.TxPipeline()
		pipe.Set(ctx, l.banKey(key), "1", l.BanTTL)
		pipe.Del(ctx, attemptKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.attemptKey(key)).Err()
}

// Noop never bans. It stands in when Redis is not configured.
type Noop struct{}

func (Noop) IsBanned(context.Context, string) (bool, error) { return false, nil }
func (Noop) RegisterFailure(context.Context, string) error  { return nil }
func (Noop) Reset(context.Context, string) error            { return nil }
