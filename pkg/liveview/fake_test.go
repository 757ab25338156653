package liveview

import (
	"context"
	"sync"

	"github.com/tavern-lab/backend/internal/model"
)

type fakeSubscription struct {
	events chan model.ChangeEvent
	once   sync.Once

	mu        sync.Mutex
	cancelled bool
}

func (s *fakeSubscription) Events() <-chan model.ChangeEvent {
	return s.events
}

func (s *fakeSubscription) Cancel() error {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
	return nil
}

func (s *fakeSubscription) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// fakeSubscriber hands out one subscription per table.
type fakeSubscriber struct {
	mu   sync.Mutex
	subs map[string]*fakeSubscription
	reqs []model.Subscription
	err  error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{subs: map[string]*fakeSubscription{}}
}

func (s *fakeSubscriber) Subscribe(ctx context.Context, req model.Subscription) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	sub := &fakeSubscription{events: make(chan model.ChangeEvent, 16)}
	s.subs[req.Table] = sub
	s.reqs = append(s.reqs, req)
	return sub, nil
}

func (s *fakeSubscriber) get(table string) *fakeSubscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[table]
}

func (s *fakeSubscriber) requests() []model.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Subscription{}, s.reqs...)
}
