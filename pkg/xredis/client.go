package xredis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tavern-lab/backend/config"
)

// Client is the subset of redis used by the change broker and the
// reconnection ticket store.
type Client interface {
	// GetObj returns redis.Nil when key does not exist.
	GetObj(ctx context.Context, key string, v any) error
	SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	Publish(ctx context.Context, channel string, msg []byte) error
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub

	Close() error
}

type client struct {
	rdb *redis.Client
}

func NewClient(ctx context.Context, cfg config.RedisConfigs) (*client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolSize:        5,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}

	return &client{rdb: rdb}, nil
}

func (c *client) GetObj(ctx context.Context, key string, v any) error {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(b, v)
}

func (c *client) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, ttl).Err()
}

func (c *client) Del(ctx context.Context, keys ...string) error {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	return nil
}

func (c *client) Publish(ctx context.Context, channel string, msg []byte) error {
	return c.rdb.Publish(ctx, channel, msg).Err()
}

func (c *client) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return c.rdb.Subscribe(ctx, channels...)
}

func (c *client) Close() error {
	return c.rdb.Close()
}
