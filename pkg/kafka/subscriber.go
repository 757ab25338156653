package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Shopify/sarama"
	"github.com/tavern-lab/backend/pkg/pubsub"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type subscriber struct {
	topics  []string
	group   sarama.ConsumerGroup
	handler pubsub.SubscribeHandler
}

func NewSubscriber(
	groupID string,
	brokerAddrs []string,
	topics []string,
	handler pubsub.SubscribeHandler,
) (*subscriber, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	// A realtime feed only cares about changes committed after it started.
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(brokerAddrs, groupID, config)
	if err != nil {
		return nil, err
	}

	return &subscriber{topics: topics, group: group, handler: handler}, nil
}

func (s *subscriber) Stop(context.Context) error {
	return s.group.Close()
}

// Subscribe returns after the first group session is set up.
func (s *subscriber) Subscribe(ctx context.Context) {
	handler := &groupHandler{ctx: ctx, ready: make(chan struct{}), fn: s.handler}

	go func() {
		for {
			// Consume returns on every rebalance, the session is recreated
			// by calling it again.
			if err := s.group.Consume(ctx, s.topics, handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}

				xcontext.Logger(ctx).Errorf("Cannot consume topics %v: %v", s.topics, err)
				time.Sleep(time.Second)
			}

			if ctx.Err() != nil {
				return
			}
		}
	}()

	select {
	case <-handler.ready:
	case <-ctx.Done():
	}
}

type groupHandler struct {
	ctx   context.Context
	ready chan struct{}
	once  sync.Once
	fn    pubsub.SubscribeHandler
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.once.Do(func() { close(h.ready) })
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			h.fn(h.ctx, &pubsub.Pack{Key: message.Key, Msg: message.Value}, message.Timestamp)
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
