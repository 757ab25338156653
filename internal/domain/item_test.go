package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/testutil"
)

func Test_itemDomain_CreateAndInventory(t *testing.T) {
	ctx, f, d := setup()
	ctx = testutil.WithUser(ctx, f.Player1.ID)

	_, err := d.item.Create(ctx, &model.CreateItemRequest{
		CharacterID: f.Character1.ID, Name: "Healing Potion", Type: "potion", Weight: 0.5, Quantity: 3,
	})
	require.NoError(t, err)

	_, err = d.item.Create(ctx, &model.CreateItemRequest{CharacterID: f.Character1.ID, Name: "Torch", Weight: 1})
	require.NoError(t, err)

	_, err = d.item.Create(ctx, &model.CreateItemRequest{CharacterID: f.Character1.ID, Name: "Orb", Type: "artifact"})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.item.Create(testutil.WithUser(ctx, f.Player2.ID), &model.CreateItemRequest{
		CharacterID: f.Character1.ID, Name: "Stolen Ring",
	})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	inventory, err := d.item.GetInventory(ctx, &model.GetInventoryRequest{CharacterID: f.Character1.ID})
	require.NoError(t, err)
	require.Len(t, inventory.Items, 2)
	require.Equal(t, "Healing Potion", inventory.Items[0].Name)
	require.Equal(t, 1, inventory.Items[1].Quantity)
	require.Equal(t, string(entity.ItemGeneral), inventory.Items[1].Type)
	require.InDelta(t, 2.5, inventory.TotalWeight, 0.0001)
}

func Test_itemDomain_Update(t *testing.T) {
	ctx, f, d := setup()

	item, err := testutil.SampleItem(ctx, &entity.Item{CharacterID: f.Character1.ID})
	require.NoError(t, err)

	quantity := 0
	_, err = d.item.Update(testutil.WithUser(ctx, f.Player1.ID), &model.UpdateItemRequest{ID: item.ID, Quantity: &quantity})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	equipped := true
	quantity = 2
	_, err = d.item.Update(testutil.WithUser(ctx, f.DM.ID), &model.UpdateItemRequest{
		ID: item.ID, Quantity: &quantity, Equipped: &equipped,
	})
	require.NoError(t, err)

	updated, err := repository.NewItemRepository().GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, 2, updated.Quantity)
	require.True(t, updated.Equipped)

	_, err = d.item.Delete(testutil.WithUser(ctx, f.Player2.ID), &model.DeleteItemRequest{ID: item.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	_, err = d.item.Delete(testutil.WithUser(ctx, f.Player1.ID), &model.DeleteItemRequest{ID: item.ID})
	require.NoError(t, err)
	require.Len(t, d.emitter.of(model.TableItems, model.ChangeDelete), 1)
}

func Test_itemDomain_Transfer(t *testing.T) {
	ctx, f, d := setup()

	// Both characters sit in the room.
	_, err := testutil.SampleRoomParticipant(ctx, &entity.RoomParticipant{
		RoomID: f.Room.ID, CharacterID: f.Character2.ID, UserID: f.Player2.ID,
	})
	require.NoError(t, err)

	item, err := testutil.SampleItem(ctx, &entity.Item{CharacterID: f.Character1.ID, Name: "Lantern"})
	require.NoError(t, err)

	player1 := testutil.WithUser(ctx, f.Player1.ID)

	_, err = d.item.Transfer(player1, &model.TransferItemRequest{ID: item.ID, ToCharacterID: f.Character1.ID})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.item.Transfer(player1, &model.TransferItemRequest{ID: item.ID, ToCharacterID: "missing"})
	require.True(t, errorx.Is(err, errorx.NotFound))

	_, err = d.item.Transfer(testutil.WithUser(ctx, f.Player2.ID), &model.TransferItemRequest{
		ID: item.ID, ToCharacterID: f.Character2.ID,
	})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	_, err = d.item.Transfer(player1, &model.TransferItemRequest{
		ID: item.ID, ToCharacterID: f.Character2.ID, RoomID: f.Room.ID,
	})
	require.NoError(t, err)

	// The item is held by exactly one character.
	itemRepo := repository.NewItemRepository()
	from, err := itemRepo.GetByCharacterID(ctx, f.Character1.ID)
	require.NoError(t, err)
	require.Empty(t, from)

	to, err := itemRepo.GetByCharacterID(ctx, f.Character2.ID)
	require.NoError(t, err)
	require.Len(t, to, 1)
	require.Equal(t, item.ID, to[0].ID)

	logs, err := repository.NewRoomLogRepository().GetLatest(ctx, f.Room.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "Aria gives Lantern to Borin", logs[0].Content)
	require.Len(t, d.emitter.of(model.TableRoomLogs, model.ChangeInsert), 1)

	// A stale holder cannot move the item again.
	err = itemRepo.Transfer(ctx, item.ID, f.Character1.ID, f.Character2.ID)
	require.True(t, isRecordNotFound(err))
}

func Test_itemDomain_TransferOutsideRoom(t *testing.T) {
	ctx, f, d := setup()

	item, err := testutil.SampleItem(ctx, &entity.Item{CharacterID: f.Character1.ID})
	require.NoError(t, err)

	// Character2 is not in the room, nothing is logged.
	_, err = d.item.Transfer(testutil.WithUser(ctx, f.Player1.ID), &model.TransferItemRequest{
		ID: item.ID, ToCharacterID: f.Character2.ID, RoomID: f.Room.ID,
	})
	require.NoError(t, err)

	logs, err := repository.NewRoomLogRepository().GetLatest(ctx, f.Room.ID, 10)
	require.NoError(t, err)
	require.Empty(t, logs)
}
