package liveview

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/client"
)

func Test_Synchronizer_Refetch(t *testing.T) {
	ctx := context.Background()
	subscriber := newFakeSubscriber()

	var fetches int32
	fetch := func(context.Context) ([]hpRow, error) {
		n := atomic.AddInt32(&fetches, 1)
		return []hpRow{{"1", int(n)}}, nil
	}

	c := NewCollection[hpRow](hpKey)
	s := NewSynchronizer(subscriber)
	Watch(s, c, model.Subscription{Table: "rows", Event: "*"}, Refetch[hpRow](fetch))

	require.NoError(t, s.Start(ctx))
	require.Equal(t, []hpRow{{"1", 1}}, c.Snapshot())

	subscriber.get("rows").events <- model.ChangeEvent{Table: "rows", Type: model.ChangeInsert}
	require.Eventually(t, func() bool {
		row, _ := c.Get("1")
		return row.HP == 2
	}, time.Second, 10*time.Millisecond)

	s.Close()
	require.True(t, subscriber.get("rows").Cancelled())
	require.ErrorIs(t, s.Start(ctx), ErrClosed)
}

func Test_Synchronizer_MergeRows(t *testing.T) {
	ctx := context.Background()
	subscriber := newFakeSubscriber()

	c := NewCollection[hpRow](hpKey)
	s := NewSynchronizer(subscriber)
	Watch(s, c, model.Subscription{Table: "rows", Event: "*"}, MergeRows[hpRow](
		func(context.Context) ([]hpRow, error) { return []hpRow{{"1", 5}, {"2", 8}}, nil },
		client.DecodeRow[hpRow],
	))

	require.NoError(t, s.Start(ctx))
	defer s.Close()

	events := subscriber.get("rows").events
	events <- model.ChangeEvent{
		Type: model.ChangeUpdate,
		Old:  map[string]any{"id": "1", "hp": 5},
		New:  map[string]any{"id": "1", "hp": 3},
	}
	events <- model.ChangeEvent{Type: model.ChangeDelete, Old: map[string]any{"id": "2", "hp": 8}}

	require.Eventually(t, func() bool {
		snapshot := c.Snapshot()
		return len(snapshot) == 1 && snapshot[0] == hpRow{"1", 3}
	}, time.Second, 10*time.Millisecond)
}

func Test_Synchronizer_NoChangesAfterClose(t *testing.T) {
	ctx := context.Background()
	subscriber := newFakeSubscriber()

	c := NewCollection[hpRow](hpKey)
	s := NewSynchronizer(subscriber)
	Watch(s, c, model.Subscription{Table: "rows"}, MergeRows[hpRow](
		func(context.Context) ([]hpRow, error) { return []hpRow{{"1", 5}}, nil },
		client.DecodeRow[hpRow],
	))

	require.NoError(t, s.Start(ctx))
	s.Close()

	subscriber.get("rows").events <- model.ChangeEvent{Type: model.ChangeUpdate, New: map[string]any{"id": "1", "hp": 1}}
	time.Sleep(20 * time.Millisecond)

	require.Equal(t, []hpRow{{"1", 5}}, c.Snapshot())
}

func Test_Synchronizer_SubscribeFailure(t *testing.T) {
	subscriber := newFakeSubscriber()
	subscriber.err = errors.New("feed is down")

	fetched := false
	c := NewCollection[hpRow](hpKey)
	s := NewSynchronizer(subscriber)
	Watch(s, c, model.Subscription{Table: "rows"}, Refetch[hpRow](func(context.Context) ([]hpRow, error) {
		fetched = true
		return nil, nil
	}))

	require.Error(t, s.Start(context.Background()))
	require.False(t, fetched)
}

func Test_Synchronizer_FetchFailureReleases(t *testing.T) {
	subscriber := newFakeSubscriber()

	c := NewCollection[hpRow](hpKey)
	s := NewSynchronizer(subscriber)
	Watch(s, c, model.Subscription{Table: "rows"}, Refetch[hpRow](func(context.Context) ([]hpRow, error) {
		return nil, errors.New("server is down")
	}))

	require.Error(t, s.Start(context.Background()))
	require.True(t, subscriber.get("rows").Cancelled())
}
