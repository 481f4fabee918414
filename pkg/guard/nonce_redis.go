package guard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisNoncePrefix = "keyward:nonce:"

// RedisNonceStore shares nonces between instances. Expiry is left to Redis.
type RedisNonceStore struct {
	client *redis.Client
}

func NewRedisNonceStore(client *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{client: client}
}

// ConnectRedis accepts a redis:// URL or a bare host:port.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisNonceStore) Seen(ctx context.Context, keyID, nonce string) (bool, error) {
	n, err := s.client.Exists(ctx, nonceKey(keyID, nonce)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisNonceStore) Record(ctx context.Context, keyID, nonce string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, nonceKey(keyID, nonce), 1, ttl).Result()
}

func nonceKey(keyID, nonce string) string {
	return redisNoncePrefix + keyID + ":" + nonce
}
