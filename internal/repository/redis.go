package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emryildiz/barberbot/internal/config"
	"github.com/emryildiz/barberbot/internal/models"
)

// RedisMessageGuard rate-limits inbound WhatsApp messages per phone number
// and deduplicates provider message ids across process restarts.
type RedisMessageGuard struct {
	client *redis.Client
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisMessageGuard(client *redis.Client) *RedisMessageGuard {
	return &RedisMessageGuard{client: client}
}

// AllowMessage counts the message against the phone's window and reports
// whether it stays under the limit.
func (r *RedisMessageGuard) AllowMessage(ctx context.Context, phone string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("msg_rate:%s", phone)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment message rate: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, models.RateLimitWindowSeconds*time.Second)
	}

	return count <= models.RateLimitMessages, nil
}

// SeenMessage records the provider message id and reports whether it was
// already processed. Twilio retries webhooks with the same MessageSid.
func (r *RedisMessageGuard) SeenMessage(ctx context.Context, messageID string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("msg_seen:%s", messageID)
	fresh, err := r.client.SetNX(ctx, key, 1, models.MessageDedupTTLSeconds*time.Second).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record message id: %w", err)
	}
	return !fresh, nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
