package changefeed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/pubsub"
)

func readFrame(t *testing.T, s *Session) model.RawEventResponse {
	select {
	case b := <-s.Frames():
		var frame model.RawEventResponse
		require.NoError(t, json.Unmarshal(b, &frame))
		return frame
	case <-time.After(time.Second):
		require.FailNow(t, "no frame received")
	}

	return model.RawEventResponse{}
}

func subscribe(t *testing.T, s *Session, sub model.Subscription) {
	data, err := json.Marshal(sub)
	require.NoError(t, err)
	msg, err := json.Marshal(model.Directive{Op: model.DirectiveSubscribe, Data: data})
	require.NoError(t, err)

	s.HandleDirective(context.Background(), msg)
	frame := readFrame(t, s)
	require.Equal(t, model.FrameSubscribed, frame.Op)
}

func Test_Hub_MultiplexedSubscriptions(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(nil)

	s, err := hub.Register("session1", "user1")
	require.NoError(t, err)

	_, err = hub.Register("session1", "user1")
	require.Error(t, err)

	subscribe(t, s, model.Subscription{ID: "participants", Table: "room_participants", Filter: "room_id=eq.room1"})
	subscribe(t, s, model.Subscription{ID: "logs", Table: "room_logs", Event: "INSERT", Filter: "room_id=eq.room1"})
	require.Equal(t, 2, s.SubscriptionCount())

	hub.Dispatch(ctx, &model.ChangeEvent{
		Table: "room_logs",
		Type:  model.ChangeInsert,
		New:   map[string]any{"room_id": "room1", "content": "hello"},
	})

	frame := readFrame(t, s)
	require.Equal(t, model.FrameChange, frame.Op)

	var notification model.ChangeNotification
	require.NoError(t, json.Unmarshal(frame.Data, &notification))
	require.Equal(t, "logs", notification.Subscription)
	require.Equal(t, "hello", notification.Event.New["content"])

	// Another room is filtered out.
	hub.Dispatch(ctx, &model.ChangeEvent{
		Table: "room_logs",
		Type:  model.ChangeInsert,
		New:   map[string]any{"room_id": "room2"},
	})
	require.Len(t, s.Frames(), 0)

	unsub, err := json.Marshal(model.Unsubscription{ID: "logs"})
	require.NoError(t, err)
	msg, err := json.Marshal(model.Directive{Op: model.DirectiveUnsubscribe, Data: unsub})
	require.NoError(t, err)
	s.HandleDirective(ctx, msg)
	require.Equal(t, model.FrameUnsubscribed, readFrame(t, s).Op)
	require.Equal(t, 1, s.SubscriptionCount())

	hub.Unregister("session1")
	require.Equal(t, 0, hub.Count())
	require.Equal(t, 0, s.SubscriptionCount())

	// A closed session never blocks the dispatcher.
	for i := 0; i < 2*frameBufferSize; i++ {
		hub.Dispatch(ctx, &model.ChangeEvent{Table: "room_participants", Type: model.ChangeInsert})
	}
}

func Test_Session_Ping_And_Errors(t *testing.T) {
	hub := NewHub(nil)
	s, err := hub.Register("session1", "user1")
	require.NoError(t, err)

	s.HandleDirective(context.Background(), []byte(`{"op":"ping"}`))
	pong := readFrame(t, s)
	require.Equal(t, model.FramePong, pong.Op)

	s.HandleDirective(context.Background(), []byte(`not json`))
	require.Equal(t, model.FrameError, readFrame(t, s).Op)

	s.HandleDirective(context.Background(), []byte(`{"op":"subscribe","data":{"id":"x"}}`))
	frame := readFrame(t, s)
	require.Equal(t, model.FrameError, frame.Op)
	require.Greater(t, frame.Seq, pong.Seq)
}

func Test_Emitter_To_Hub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := pubsub.NewMemoryBroker()
	hub := NewHub(nil)
	subscriber := broker.NewSubscriber([]string{DefaultTopic}, hub.SubscribeHandler)
	subscriber.Subscribe(ctx)
	defer subscriber.Stop(ctx)

	s, err := hub.Register("session1", "user1")
	require.NoError(t, err)
	subscribe(t, s, model.Subscription{ID: "rooms", Table: "rooms", Filter: "id=eq.room1"})

	emitter := NewEmitter(broker, "")
	emitter.Update(ctx, "rooms",
		model.Room{ID: "room1", BroadcastImageURL: ""},
		model.Room{ID: "room1", BroadcastImageURL: "https://maps/room1.png"},
	)

	frame := readFrame(t, s)
	require.Equal(t, model.FrameChange, frame.Op)

	var notification model.ChangeNotification
	require.NoError(t, json.Unmarshal(frame.Data, &notification))
	require.Equal(t, model.ChangeUpdate, notification.Event.Type)
	require.Equal(t, "https://maps/room1.png", notification.Event.New["broadcast_image_url"])
	require.Equal(t, "", notification.Event.Old["broadcast_image_url"])
	require.NotEmpty(t, notification.Event.CommitTimestamp)
}

func Test_ToRow(t *testing.T) {
	require.Nil(t, ToRow(nil))
	require.Nil(t, ToRow("not a struct"))

	row := ToRow(&model.RoomParticipant{RoomID: "room1", CharacterID: "c1"})
	require.Equal(t, "room1", row["room_id"])
	require.Equal(t, "c1", row["character_id"])
}

type stubDMChecker struct {
	characterDMs map[string]string
	campaignDMs  map[string]string
}

func (c stubDMChecker) IsCharacterDM(_ context.Context, userID, characterID string) (bool, error) {
	return c.characterDMs[characterID] == userID, nil
}

func (c stubDMChecker) IsCampaignDM(_ context.Context, userID, campaignID string) (bool, error) {
	return c.campaignDMs[campaignID] == userID, nil
}

func readChange(t *testing.T, s *Session) model.ChangeEvent {
	frame := readFrame(t, s)
	require.Equal(t, model.FrameChange, frame.Op)

	var notification model.ChangeNotification
	require.NoError(t, json.Unmarshal(frame.Data, &notification))
	return notification.Event
}

func Test_Hub_HidesEnemyHP(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(NewHPPolicy(stubDMChecker{
		characterDMs: map[string]string{"goblin": "dm-user"},
		campaignDMs:  map[string]string{"campaign1": "dm-user"},
	}))

	player, err := hub.Register("player-session", "player-user")
	require.NoError(t, err)
	dm, err := hub.Register("dm-session", "dm-user")
	require.NoError(t, err)

	for _, s := range []*Session{player, dm} {
		subscribe(t, s, model.Subscription{ID: "characters", Table: model.TableCharacters, Event: "UPDATE"})
		subscribe(t, s, model.Subscription{ID: "enemies", Table: model.TableEncounterEnemies})
	}

	goblin := func(hp int) map[string]any {
		return map[string]any{"id": "goblin", "is_enemy": true, "hp_current": hp, "hp_max": 30, "hp_temp": 2}
	}
	hub.Dispatch(ctx, &model.ChangeEvent{
		Table: model.TableCharacters, Type: model.ChangeUpdate, Old: goblin(12), New: goblin(7),
	})

	e := readChange(t, player)
	for _, row := range []map[string]any{e.New, e.Old} {
		require.EqualValues(t, 0, row["hp_current"])
		require.EqualValues(t, 0, row["hp_max"])
		require.EqualValues(t, 0, row["hp_temp"])
		require.Equal(t, true, row["hp_hidden"])
		require.Equal(t, "goblin", row["id"])
	}

	e = readChange(t, dm)
	require.EqualValues(t, 7, e.New["hp_current"])
	require.EqualValues(t, 30, e.New["hp_max"])
	require.Nil(t, e.New["hp_hidden"])

	// Player characters are sent as they are.
	hub.Dispatch(ctx, &model.ChangeEvent{
		Table: model.TableCharacters, Type: model.ChangeUpdate,
		New: map[string]any{"id": "aria", "is_enemy": false, "hp_current": 9, "hp_max": 10},
	})
	require.EqualValues(t, 9, readChange(t, player).New["hp_current"])
	require.EqualValues(t, 9, readChange(t, dm).New["hp_current"])

	hub.Dispatch(ctx, &model.ChangeEvent{
		Table: model.TableEncounterEnemies, Type: model.ChangeInsert,
		New: map[string]any{"id": "orc", "campaign_id": "campaign1", "hp_current": 15, "hp_max": 15, "hp_percent": 100},
	})

	e = readChange(t, player)
	require.EqualValues(t, 0, e.New["hp_current"])
	require.EqualValues(t, 0, e.New["hp_max"])
	require.EqualValues(t, 100, e.New["hp_percent"])

	e = readChange(t, dm)
	require.EqualValues(t, 15, e.New["hp_current"])
}

func Test_Hub_ClosesSlowSession(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(nil)

	slow, err := hub.Register("slow", "user1")
	require.NoError(t, err)
	fast, err := hub.Register("fast", "user2")
	require.NoError(t, err)

	subscribe(t, slow, model.Subscription{ID: "logs", Table: model.TableRoomLogs})
	subscribe(t, fast, model.Subscription{ID: "logs", Table: model.TableRoomLogs})

	insert := &model.ChangeEvent{Table: model.TableRoomLogs, Type: model.ChangeInsert}
	for i := 0; i < frameBufferSize; i++ {
		hub.Dispatch(ctx, insert)
	}
	for i := 0; i < frameBufferSize; i++ {
		<-fast.Frames()
	}

	// Both buffers were full. The slow one overflows, the fast one drained.
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		hub.Dispatch(ctx, insert)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		require.FailNow(t, "dispatch is blocked by a slow session")
	}

	select {
	case <-slow.Done():
	case <-time.After(time.Second):
		require.FailNow(t, "slow session is not closed")
	}

	require.Equal(t, model.FrameChange, readFrame(t, fast).Op)
	select {
	case <-fast.Done():
		require.FailNow(t, "fast session is closed")
	default:
	}
}
