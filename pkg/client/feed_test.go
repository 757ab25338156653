package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/domain"
	"github.com/tavern-lab/backend/internal/domain/changefeed"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/router"
	"github.com/tavern-lab/backend/pkg/testutil"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

func newFeedServer(t *testing.T, compressFrames bool) (*changefeed.Hub, string) {
	ctx := testutil.MockContext()
	cfg := xcontext.Configs(ctx)
	cfg.RealtimeServer.CompressFrames = compressFrames
	ctx = xcontext.WithConfigs(ctx, cfg)

	hub := changefeed.NewHub(nil)
	r := router.New(ctx)
	r.Before(func(ctx context.Context) (context.Context, error) {
		return xcontext.WithRequestUserID(ctx, "user-1"), nil
	})
	router.Websocket(r, "/realtime", domain.NewRealtimeDomain(hub).ServeRealtime)

	server := httptest.NewServer(r.Handler(xcontext.Configs(testutil.MockContext()).ApiServer.ServerConfigs))
	t.Cleanup(server.Close)
	return hub, RealtimeEndpoint(server.URL)
}

func waitEvent(t *testing.T, events <-chan model.ChangeEvent) model.ChangeEvent {
	select {
	case e, ok := <-events:
		require.True(t, ok, "events channel is closed")
		return e
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no event received")
	}

	return model.ChangeEvent{}
}

func Test_Feed_Multiplex(t *testing.T) {
	hub, endpoint := newFeedServer(t, false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feed, err := DialFeed(ctx, endpoint, "")
	require.NoError(t, err)
	defer feed.Close()

	participants, err := feed.Subscribe(ctx, model.Subscription{
		Table: model.TableRoomParticipants, Event: "*", Filter: "room_id=eq.room-1",
	})
	require.NoError(t, err)

	logs, err := feed.Subscribe(ctx, model.Subscription{
		ID: "logs", Table: model.TableRoomLogs, Event: "INSERT", Filter: "room_id=eq.room-1",
	})
	require.NoError(t, err)

	_, err = feed.Subscribe(ctx, model.Subscription{ID: "bad", Table: model.TableRooms, Filter: "=="})
	require.Error(t, err)

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Dispatch(ctx, &model.ChangeEvent{
		Table: model.TableRoomLogs, Type: model.ChangeInsert,
		New: map[string]any{"room_id": "room-1", "content": "Aria rolls 1d20: [ 17 ]"},
	})
	hub.Dispatch(ctx, &model.ChangeEvent{
		Table: model.TableRoomParticipants, Type: model.ChangeDelete,
		Old: map[string]any{"room_id": "room-1", "character_id": "char-1"},
	})

	e := waitEvent(t, logs.Events())
	require.Equal(t, "Aria rolls 1d20: [ 17 ]", e.New["content"])

	e = waitEvent(t, participants.Events())
	require.Equal(t, model.ChangeDelete, e.Type)
	require.Equal(t, "char-1", e.Row()["character_id"])

	require.NoError(t, logs.Cancel())
	_, ok := <-logs.Events()
	require.False(t, ok)

	require.NoError(t, feed.Close())
	_, ok = <-participants.Events()
	require.False(t, ok)
	require.True(t, strings.HasSuffix(endpoint, "/realtime"))
}

func Test_Feed_CompressedFrames(t *testing.T) {
	hub, endpoint := newFeedServer(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feed, err := DialFeed(ctx, endpoint, "")
	require.NoError(t, err)
	defer feed.Close()

	rooms, err := feed.Subscribe(ctx, model.Subscription{Table: model.TableRooms, Filter: "id=eq.room-1"})
	require.NoError(t, err)

	hub.Dispatch(ctx, &model.ChangeEvent{
		Table: model.TableRooms, Type: model.ChangeUpdate,
		New: map[string]any{"id": "room-1", "broadcast_image_url": "https://maps/room-1.png"},
	})

	e := waitEvent(t, rooms.Events())
	require.Equal(t, "https://maps/room-1.png", e.New["broadcast_image_url"])
}

func Test_Feed_SubscribeCancelled(t *testing.T) {
	hub, endpoint := newFeedServer(t, false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feed, err := DialFeed(ctx, endpoint, "")
	require.NoError(t, err)
	defer feed.Close()

	cancelled, cancelSubscribe := context.WithCancel(ctx)
	cancelSubscribe()
	_, err = feed.Subscribe(cancelled, model.Subscription{ID: "logs", Table: model.TableRoomLogs})
	require.ErrorIs(t, err, context.Canceled)

	// Directives of one socket are applied in order, so once this one is
	// acknowledged the cancelled subscription is gone from the server.
	_, err = feed.Subscribe(ctx, model.Subscription{ID: "rooms", Table: model.TableRooms})
	require.NoError(t, err)
	require.Equal(t, 1, hub.SubscriptionCount())
}
