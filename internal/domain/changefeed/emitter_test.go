package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/pubsub"
	"github.com/tavern-lab/backend/pkg/testutil"
)

func Test_Emitter_Packs(t *testing.T) {
	ctx := context.Background()
	publisher := &testutil.MockPublisher{}
	e := NewEmitter(publisher, "")

	e.Update(ctx, model.TableRooms,
		&model.Room{ID: "room1", Name: "Crypt"},
		&model.Room{ID: "room1", Name: "Crypt", BroadcastImageURL: "maps/1.png"},
	)
	e.Delete(ctx, model.TableBadges, &model.Badge{ID: "badge1"})

	published := publisher.Published()
	require.Len(t, published, 2)
	require.Equal(t, DefaultTopic, published[0].Topic)
	require.Equal(t, []byte(model.TableRooms), published[0].Pack.Key)

	var event model.ChangeEvent
	require.NoError(t, json.Unmarshal(published[0].Pack.Msg, &event))
	require.Equal(t, model.ChangeUpdate, event.Type)
	require.Equal(t, "maps/1.png", event.New["broadcast_image_url"])
	require.Equal(t, "", event.Old["broadcast_image_url"])
	require.NotEmpty(t, event.CommitTimestamp)

	event = model.ChangeEvent{}
	require.NoError(t, json.Unmarshal(published[1].Pack.Msg, &event))
	require.Equal(t, model.ChangeDelete, event.Type)
	require.Nil(t, event.New)
	require.Equal(t, "badge1", event.Row()["id"])
}

func Test_Emitter_PublishFailure(t *testing.T) {
	publisher := &testutil.MockPublisher{
		PublishFunc: func(context.Context, string, *pubsub.Pack) error {
			return errors.New("broker is down")
		},
	}

	// A failed publish is only logged.
	NewEmitter(publisher, "changes").Insert(context.Background(), model.TableItems, &model.Item{ID: "item1"})
	require.Empty(t, publisher.Published())
}
