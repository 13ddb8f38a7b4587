package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"cafeteria/backend/internal/domain"
)

const (
	keyPrefix     = "cafeteria:ventas:idempotencia:"
	pendingMarker = "pending"
)

type RedisSaleReplayCache struct {
	client *redis.Client
}

func NewRedisSaleReplayCache(addr string, password string, db int) *RedisSaleReplayCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisSaleReplayCache{client: client}
}

func (c *RedisSaleReplayCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisSaleReplayCache) Close() error {
	return c.client.Close()
}

func (c *RedisSaleReplayCache) Get(ctx context.Context, key string) (*domain.Sale, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if string(val) == pendingMarker {
		return nil, false, ErrPending
	}

	var sale domain.Sale
	if err := json.Unmarshal(val, &sale); err != nil {
		return nil, false, err
	}
	return &sale, true, nil
}

// Reserve stores the pending marker under key unless the key already exists.
func (c *RedisSaleReplayCache) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, keyPrefix+key, pendingMarker, ttl).Result()
}

// Set overwrites the reservation with the created sale. A nil sale is ignored.
func (c *RedisSaleReplayCache) Set(ctx context.Context, key string, value *domain.Sale, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+key, payload, ttl).Err()
}

func (c *RedisSaleReplayCache) Release(ctx context.Context, key string) error {
	return c.client.Del(ctx, keyPrefix+key).Err()
}
