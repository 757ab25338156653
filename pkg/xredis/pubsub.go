package xredis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tavern-lab/backend/pkg/pubsub"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

// envelope keeps the pack key next to its payload, redis channels only carry
// a single string.
type envelope struct {
	Key []byte `json:"k"`
	Msg []byte `json:"m"`
}

type publisher struct {
	client Client
}

func NewPublisher(client Client) *publisher {
	return &publisher{client: client}
}

func (p *publisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	b, err := json.Marshal(envelope{Key: pack.Key, Msg: pack.Msg})
	if err != nil {
		return err
	}

	return p.client.Publish(ctx, topic, b)
}

type subscriber struct {
	client  Client
	topics  []string
	handler pubsub.SubscribeHandler

	ps *redis.PubSub
}

func NewSubscriber(client Client, topics []string, handler pubsub.SubscribeHandler) *subscriber {
	return &subscriber{client: client, topics: topics, handler: handler}
}

func (s *subscriber) Subscribe(ctx context.Context) {
	s.ps = s.client.Subscribe(ctx, s.topics...)
	if _, err := s.ps.Receive(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot subscribe redis channels %v: %v", s.topics, err)
	}

	go func() {
		for msg := range s.ps.Channel() {
			var e envelope
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot unmarshal redis message: %v", err)
				continue
			}

			s.handler(ctx, &pubsub.Pack{Key: e.Key, Msg: e.Msg}, time.Now())
		}
	}()
}

func (s *subscriber) Stop(context.Context) error {
	if s.ps == nil {
		return nil
	}

	return s.ps.Close()
}
