package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis"

	"stockmetrics/internal/fetcher"
)

// KeyIndex is the redis set holding every key written by this store
const KeyIndex = "stockmetrics:keys"

// RedisClient is the subset of *redis.Client the store needs
type RedisClient interface {
	Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SAdd(key string, members ...interface{}) *redis.IntCmd
	Close() error
}

// Redis writes each result as JSON under its key
type Redis struct {
	client RedisClient
	ttl    time.Duration
}

// NewRedis connects to the redis server at addr. A ttl of zero keeps keys
// until they are overwritten.
func NewRedis(addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	res, err := client.Ping().Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	slog.Debug("connected to redis", "addr", addr, "reply", res)

	return NewRedisWithClient(client, ttl), nil
}

// NewRedisWithClient creates a store on top of an existing client
func NewRedisWithClient(client RedisClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Save writes the record and adds its key to KeyIndex. Failed results are
// skipped so a transient error never overwrites good data.
func (r *Redis) Save(ctx context.Context, result fetcher.Result) error {
	if result.Error != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := NewRecord(result).JSON()
	if err != nil {
		return err
	}

	if err := r.client.Set(result.Key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", result.Key, err)
	}
	if err := r.client.SAdd(KeyIndex, result.Key).Err(); err != nil {
		return fmt.Errorf("failed to index %s: %w", result.Key, err)
	}
	return nil
}

// Name returns "redis"
func (r *Redis) Name() string {
	return "redis"
}

// Close closes the client
func (r *Redis) Close() error {
	return r.client.Close()
}
