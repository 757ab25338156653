package changefeed

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/model"
)

func Test_parseFilter(t *testing.T) {
	f, err := parseFilter("room_id=eq.room1")
	require.NoError(t, err)
	require.Equal(t, &filter{column: "room_id", value: "room1"}, f)

	f, err = parseFilter("id=abc")
	require.NoError(t, err)
	require.Equal(t, &filter{column: "id", value: "abc"}, f)

	f, err = parseFilter("")
	require.NoError(t, err)
	require.Nil(t, f)

	_, err = parseFilter("room_id")
	require.Error(t, err)
}

func Test_subscription_match(t *testing.T) {
	sub, err := newSubscription(model.Subscription{
		ID:     "participants",
		Table:  "room_participants",
		Event:  "*",
		Filter: "room_id=eq.room1",
	})
	require.NoError(t, err)

	require.True(t, sub.match(&model.ChangeEvent{
		Table: "room_participants",
		Type:  model.ChangeInsert,
		New:   map[string]any{"room_id": "room1"},
	}))

	require.False(t, sub.match(&model.ChangeEvent{
		Table: "room_participants",
		Type:  model.ChangeInsert,
		New:   map[string]any{"room_id": "room2"},
	}))

	require.False(t, sub.match(&model.ChangeEvent{
		Table: "room_logs",
		Type:  model.ChangeInsert,
		New:   map[string]any{"room_id": "room1"},
	}))

	// Deletes are matched against the old row.
	require.True(t, sub.match(&model.ChangeEvent{
		Table: "room_participants",
		Type:  model.ChangeDelete,
		Old:   map[string]any{"room_id": "room1"},
	}))

	typed, err := newSubscription(model.Subscription{ID: "logs", Table: "room_logs", Event: "insert"})
	require.NoError(t, err)
	require.True(t, typed.match(&model.ChangeEvent{Table: "room_logs", Type: model.ChangeInsert}))
	require.False(t, typed.match(&model.ChangeEvent{Table: "room_logs", Type: model.ChangeDelete}))

	numeric, err := newSubscription(model.Subscription{ID: "hp", Table: "characters", Filter: "hp_current=eq.0"})
	require.NoError(t, err)
	require.True(t, numeric.match(&model.ChangeEvent{
		Table: "characters",
		Type:  model.ChangeUpdate,
		New:   map[string]any{"hp_current": float64(0)},
	}))
}

func Test_newSubscription_Invalid(t *testing.T) {
	_, err := newSubscription(model.Subscription{Table: "rooms"})
	require.Error(t, err)

	_, err = newSubscription(model.Subscription{ID: "a"})
	require.Error(t, err)

	_, err = newSubscription(model.Subscription{ID: "a", Table: "rooms", Event: "TRUNCATE"})
	require.Error(t, err)
}
