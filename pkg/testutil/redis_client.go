package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type MockRedisClient struct {
	GetObjFunc  func(ctx context.Context, key string, v any) error
	SetObjFunc  func(ctx context.Context, key string, obj any, ttl time.Duration) error
	DelFunc     func(ctx context.Context, keys ...string) error
	PublishFunc func(ctx context.Context, channel string, msg []byte) error
}

func (m *MockRedisClient) GetObj(ctx context.Context, key string, v any) error {
	if m.GetObjFunc != nil {
		return m.GetObjFunc(ctx, key, v)
	}

	return redis.Nil
}

func (m *MockRedisClient) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	if m.SetObjFunc != nil {
		return m.SetObjFunc(ctx, key, obj, ttl)
	}

	return nil
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}

	return nil
}

func (m *MockRedisClient) Publish(ctx context.Context, channel string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, channel, msg)
	}

	return nil
}

// Subscribe is not supported by the mock.
func (m *MockRedisClient) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return nil
}

func (m *MockRedisClient) Close() error {
	return nil
}

// NewMapRedisClient returns a mock whose object commands are backed by a
// map. Publish records nothing.
func NewMapRedisClient() *MockRedisClient {
	var mu sync.Mutex
	data := map[string][]byte{}

	return &MockRedisClient{
		SetObjFunc: func(ctx context.Context, key string, obj any, ttl time.Duration) error {
			b, err := json.Marshal(obj)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			data[key] = b
			return nil
		},
		GetObjFunc: func(ctx context.Context, key string, v any) error {
			mu.Lock()
			b, ok := data[key]
			mu.Unlock()
			if !ok {
				return redis.Nil
			}

			return json.Unmarshal(b, v)
		},
		DelFunc: func(ctx context.Context, keys ...string) error {
			mu.Lock()
			defer mu.Unlock()
			for _, key := range keys {
				delete(data, key)
			}
			return nil
		},
	}
}
