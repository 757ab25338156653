package pubsub

import (
	"context"
	"sync"
	"time"
)

type message struct {
	pack *Pack
	at   time.Time
}

// MemoryBroker is an in-process Publisher. It is used when the API and the
// realtime feed run in the same process, and in tests.
type MemoryBroker struct {
	mutex       sync.RWMutex
	subscribers map[string][]*memorySubscriber
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subscribers: make(map[string][]*memorySubscriber)}
}

func (b *MemoryBroker) Publish(ctx context.Context, topic string, pack *Pack) error {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	now := time.Now()
	for _, s := range b.subscribers[topic] {
		s.deliver(message{pack: pack, at: now})
	}

	return nil
}

func (b *MemoryBroker) NewSubscriber(topics []string, handler SubscribeHandler) *memorySubscriber {
	return &memorySubscriber{
		broker:  b,
		topics:  topics,
		handler: handler,
		c:       make(chan message, 1024),
		done:    make(chan struct{}),
	}
}

func (b *MemoryBroker) register(s *memorySubscriber) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, topic := range s.topics {
		b.subscribers[topic] = append(b.subscribers[topic], s)
	}
}

func (b *MemoryBroker) unregister(s *memorySubscriber) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, topic := range s.topics {
		subs := b.subscribers[topic]
		for i := range subs {
			if subs[i] == s {
				b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

type memorySubscriber struct {
	broker  *MemoryBroker
	topics  []string
	handler SubscribeHandler

	c        chan message
	done     chan struct{}
	stopOnce sync.Once
}

func (s *memorySubscriber) deliver(msg message) {
	select {
	case s.c <- msg:
	case <-s.done:
	}
}

func (s *memorySubscriber) Subscribe(ctx context.Context) {
	s.broker.register(s)

	go func() {
		defer s.broker.unregister(s)
		for {
			select {
			case msg := <-s.c:
				select {
				case <-s.done:
					return
				default:
				}

				s.handler(ctx, msg.pack, msg.at)
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}()
}

func (s *memorySubscriber) Stop(context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}
