package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"sportsedge/ingestion/internal/models"
)

// RedisCache holds short-TTL provider payloads and carries the weekly
// model-retrain signal to the training pipeline.
type RedisCache struct {
	client *redis.Client
}

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

const retrainQueue = "sportsedge:retrain"

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetPayload returns a cached provider payload, or nil on miss
func (c *RedisCache) GetPayload(ctx context.Context, key string) []byte {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return nil
	}
	return val
}

// SetPayload caches a provider payload with a TTL
func (c *RedisCache) SetPayload(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// PublishRetrain queues a model-retrain signal for one sport
func (c *RedisCache) PublishRetrain(ctx context.Context, sport models.Sport) error {
	entry := fmt.Sprintf("%s:%d", sport, time.Now().UTC().Unix())
	if err := c.client.LPush(ctx, retrainQueue, entry).Err(); err != nil {
		return fmt.Errorf("failed to publish retrain signal: %w", err)
	}

	log.Info().Str("sport", string(sport)).Msg("Retrain signal published")
	return nil
}
