package liveview

import (
	"context"
	"errors"
	"sync"

	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/client"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

var ErrClosed = errors.New("synchronizer is closed")

type Subscription interface {
	Events() <-chan model.ChangeEvent
	Cancel() error
}

type Subscriber interface {
	Subscribe(context.Context, model.Subscription) (Subscription, error)
}

type feedSubscriber struct {
	feed *client.Feed
}

// NewFeedSubscriber subscribes through a realtime feed connection.
func NewFeedSubscriber(feed *client.Feed) *feedSubscriber {
	return &feedSubscriber{feed: feed}
}

func (s *feedSubscriber) Subscribe(ctx context.Context, req model.Subscription) (Subscription, error) {
	sub, err := s.feed.Subscribe(ctx, req)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

type FetchFunc[T any] func(context.Context) ([]T, error)
type DecodeFunc[T any] func(map[string]any) (T, error)

// Strategy tells how a watched collection reacts to change events.
type Strategy[T any] struct {
	fetch  FetchFunc[T]
	decode DecodeFunc[T]
}

// Refetch reloads the whole collection on every event.
func Refetch[T any](fetch FetchFunc[T]) Strategy[T] {
	return Strategy[T]{fetch: fetch}
}

// MergeRows merges the row carried by each event into the collection by
// primary key. fetch is only used for the initial load.
func MergeRows[T any](fetch FetchFunc[T], decode DecodeFunc[T]) Strategy[T] {
	return Strategy[T]{fetch: fetch, decode: decode}
}

type watcher interface {
	subscription() model.Subscription
	load(context.Context) error
	handle(context.Context, model.ChangeEvent)
	close()
}

type watch[T any] struct {
	sub        model.Subscription
	collection *Collection[T]
	strategy   Strategy[T]
}

func (w *watch[T]) subscription() model.Subscription {
	return w.sub
}

func (w *watch[T]) load(ctx context.Context) error {
	if w.strategy.fetch == nil {
		return nil
	}

	rows, err := w.strategy.fetch(ctx)
	if err != nil {
		return err
	}

	w.collection.Replace(rows)
	return nil
}

func (w *watch[T]) handle(ctx context.Context, event model.ChangeEvent) {
	if w.strategy.decode == nil {
		if err := w.load(ctx); err != nil && ctx.Err() == nil {
			xcontext.Logger(ctx).Warnf("Cannot refetch %s: %v", w.sub.Table, err)
		}
		return
	}

	row, err := w.strategy.decode(event.Row())
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode row of %s: %v", w.sub.Table, err)
		return
	}

	if event.Type == model.ChangeDelete {
		w.collection.Remove(w.collection.key(row))
		return
	}

	w.collection.Merge(row)
}

func (w *watch[T]) close() {
	w.collection.Close()
}

// Synchronizer keeps a set of collections in line with the change feed.
type Synchronizer struct {
	subscriber Subscriber

	mu            sync.Mutex
	watchers      []watcher
	subscriptions []Subscription
	started       bool
	closed        bool
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewSynchronizer(subscriber Subscriber) *Synchronizer {
	return &Synchronizer{subscriber: subscriber}
}

// Watch adds a collection to synchronize. It must be called before Start.
func Watch[T any](s *Synchronizer, c *Collection[T], sub model.Subscription, strategy Strategy[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, &watch[T]{sub: sub, collection: c, strategy: strategy})
}

// Start subscribes every watch, performs the initial fetches, then applies
// events in arrival order until Close.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	if s.started {
		s.mu.Unlock()
		return errors.New("synchronizer is already started")
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	watchers := append([]watcher{}, s.watchers...)
	s.mu.Unlock()

	// Subscribe before fetching so no change committed in between is lost.
	subs := make([]Subscription, 0, len(watchers))
	for _, w := range watchers {
		sub, err := s.subscriber.Subscribe(ctx, w.subscription())
		if err != nil {
			s.release(subs)
			return err
		}
		subs = append(subs, sub)
	}

	for _, w := range watchers {
		if err := w.load(ctx); err != nil {
			s.release(subs)
			return err
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.release(subs)
		return ErrClosed
	}
	s.subscriptions = subs
	for i := range watchers {
		s.wg.Add(1)
		go s.pump(ctx, watchers[i], subs[i])
	}
	s.mu.Unlock()

	return nil
}

func (s *Synchronizer) pump(ctx context.Context, w watcher, sub Subscription) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}

			if ctx.Err() != nil {
				return
			}

			w.handle(ctx, event)
		}
	}
}

// Close releases the subscriptions. No collection changes after it returns.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true

	if s.cancel != nil {
		s.cancel()
	}

	watchers := s.watchers
	subs := s.subscriptions
	s.mu.Unlock()

	for _, w := range watchers {
		w.close()
	}

	s.release(subs)
	s.wg.Wait()
}

func (s *Synchronizer) release(subs []Subscription) {
	// Errors are ignored, the feed may already be gone.
	for _, sub := range subs {
		sub.Cancel()
	}
}
