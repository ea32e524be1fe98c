package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clearfeed/config"
	"clearfeed/types"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis connection and key namespace
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Prefix   string // prepended to every key, e.g. clearfeed:
	TTL      time.Duration
}

// Redis is a Store backed by Redis string keys holding JSON article lists.
// Expiry is delegated to Redis via SET EX.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfigFrom builds a RedisConfig from the application config.
func RedisConfigFrom(cfg config.Config) RedisConfig {
	return RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
		Prefix:   cfg.CachePrefix,
		TTL:      cfg.CacheTTL,
	}
}

// NewRedis creates a Redis store and verifies connectivity
func NewRedis(cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Redis{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}, nil
}

// Close closes the underlying Redis client
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]*types.Article, bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var articles []*types.Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		return nil, false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	if articles == nil {
		articles = []*types.Article{}
	}
	return articles, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, articles []*types.Article) error {
	if articles == nil {
		articles = []*types.Article{}
	}
	raw, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// FlushAll deletes every key under the store's prefix. Other keys in the
// same database are left alone.
func (r *Redis) FlushAll(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}
