package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tavern-lab/backend/internal/common"
	"github.com/tavern-lab/backend/internal/domain/changefeed"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/enum"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type ItemDomain interface {
	Create(context.Context, *model.CreateItemRequest) (*model.CreateItemResponse, error)
	Update(context.Context, *model.UpdateItemRequest) (*model.UpdateItemResponse, error)
	Delete(context.Context, *model.DeleteItemRequest) (*model.DeleteItemResponse, error)
	GetInventory(context.Context, *model.GetInventoryRequest) (*model.GetInventoryResponse, error)
	Transfer(context.Context, *model.TransferItemRequest) (*model.TransferItemResponse, error)
}

type itemDomain struct {
	itemRepo            repository.ItemRepository
	characterRepo       repository.CharacterRepository
	roomParticipantRepo repository.RoomParticipantRepository
	characterVerifier   *common.CharacterVerifier
	roomLogger          *roomLogger
	emitter             changefeed.Emitter
}

func NewItemDomain(
	itemRepo repository.ItemRepository,
	characterRepo repository.CharacterRepository,
	roomParticipantRepo repository.RoomParticipantRepository,
	roomLogRepo repository.RoomLogRepository,
	characterVerifier *common.CharacterVerifier,
	emitter changefeed.Emitter,
) *itemDomain {
	return &itemDomain{
		itemRepo:            itemRepo,
		characterRepo:       characterRepo,
		roomParticipantRepo: roomParticipantRepo,
		characterVerifier:   characterVerifier,
		roomLogger:          newRoomLogger(roomLogRepo, emitter),
		emitter:             emitter,
	}
}

func (d *itemDomain) Create(ctx context.Context, req *model.CreateItemRequest) (*model.CreateItemResponse, error) {
	if _, err := d.characterVerifier.VerifyOwnerOrDM(ctx, req.CharacterID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Item name is required")
	}

	itemType, err := parseItemType(req.Type)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	if quantity < 1 {
		return nil, errorx.New(errorx.BadRequest, "Quantity must be at least 1")
	}

	if req.Weight < 0 {
		return nil, errorx.New(errorx.BadRequest, "Weight must not be negative")
	}

	item := &entity.Item{
		Base:        entity.Base{ID: uuid.NewString()},
		CharacterID: req.CharacterID,
		Name:        name,
		Description: req.Description,
		Type:        itemType,
		Quantity:    quantity,
		Weight:      req.Weight,
		Equipped:    req.Equipped,
	}

	if err := d.itemRepo.Create(ctx, item); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create item: %v", err)
		return nil, errorx.Unknown
	}

	d.emitter.Insert(ctx, model.TableItems, model.ConvertItem(item))
	return &model.CreateItemResponse{ID: item.ID}, nil
}

func (d *itemDomain) Update(ctx context.Context, req *model.UpdateItemRequest) (*model.UpdateItemResponse, error) {
	item, err := d.verifyItem(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errorx.New(errorx.BadRequest, "Item name is required")
		}
		fields["name"] = name
	}

	if req.Description != nil {
		fields["description"] = *req.Description
	}

	if req.Type != nil {
		itemType, err := parseItemType(*req.Type)
		if err != nil {
			return nil, err
		}
		fields["type"] = itemType
	}

	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, errorx.New(errorx.BadRequest, "Quantity must be at least 1")
		}
		fields["quantity"] = *req.Quantity
	}

	if req.Weight != nil {
		if *req.Weight < 0 {
			return nil, errorx.New(errorx.BadRequest, "Weight must not be negative")
		}
		fields["weight"] = *req.Weight
	}

	if req.Equipped != nil {
		fields["equipped"] = *req.Equipped
	}

	if len(fields) == 0 {
		return &model.UpdateItemResponse{}, nil
	}

	if err := d.itemRepo.Update(ctx, item.ID, fields); err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found item")
		}

		xcontext.Logger(ctx).Errorf("Cannot update item: %v", err)
		return nil, errorx.Unknown
	}

	d.emitUpdate(ctx, item)
	return &model.UpdateItemResponse{}, nil
}

func (d *itemDomain) Delete(ctx context.Context, req *model.DeleteItemRequest) (*model.DeleteItemResponse, error) {
	item, err := d.verifyItem(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.itemRepo.Delete(ctx, item.ID); err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found item")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete item: %v", err)
		return nil, errorx.Unknown
	}

	d.emitter.Delete(ctx, model.TableItems, model.ConvertItem(item))
	return &model.DeleteItemResponse{}, nil
}

func (d *itemDomain) GetInventory(
	ctx context.Context, req *model.GetInventoryRequest,
) (*model.GetInventoryResponse, error) {
	if _, err := d.characterVerifier.VerifyOwnerOrDM(ctx, req.CharacterID); err != nil {
		return nil, err
	}

	items, err := d.itemRepo.GetByCharacterID(ctx, req.CharacterID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get inventory: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Item{}
	totalWeight := 0.0
	for i := range items {
		result = append(result, model.ConvertItem(&items[i]))
		totalWeight += items[i].Weight * float64(items[i].Quantity)
	}

	return &model.GetInventoryResponse{Items: result, TotalWeight: totalWeight}, nil
}

func (d *itemDomain) Transfer(
	ctx context.Context, req *model.TransferItemRequest,
) (*model.TransferItemResponse, error) {
	item, err := d.verifyItem(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if item.CharacterID == req.ToCharacterID {
		return nil, errorx.New(errorx.BadRequest, "The item is already held by this character")
	}

	from, err := d.characterRepo.GetByID(ctx, item.CharacterID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get holder of item: %v", err)
		return nil, errorx.Unknown
	}

	to, err := d.characterRepo.GetByID(ctx, req.ToCharacterID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found target character")
		}

		xcontext.Logger(ctx).Errorf("Cannot get target character: %v", err)
		return nil, errorx.Unknown
	}

	logInRoom := false
	if req.RoomID != "" {
		logInRoom, err = d.bothInRoom(ctx, req.RoomID, from.ID, to.ID)
		if err != nil {
			return nil, err
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.itemRepo.Transfer(ctx, item.ID, from.ID, to.ID); err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "The item has already been moved")
		}

		xcontext.Logger(ctx).Errorf("Cannot transfer item: %v", err)
		return nil, errorx.Unknown
	}

	var log *entity.RoomLog
	if logInRoom {
		content := fmt.Sprintf("%s gives %s to %s", from.Name, item.Name, to.Name)
		if log, err = d.roomLogger.Write(ctx, req.RoomID, authorSystem, content); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot append room log: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := commit(ctx); err != nil {
		return nil, err
	}

	d.emitUpdate(ctx, item)
	if log != nil {
		d.roomLogger.Announce(ctx, log)
	}

	return &model.TransferItemResponse{}, nil
}

func (d *itemDomain) bothInRoom(ctx context.Context, roomID string, characterIDs ...string) (bool, error) {
	for _, id := range characterIDs {
		_, err := d.roomParticipantRepo.Get(ctx, roomID, id)
		if err != nil {
			if isRecordNotFound(err) {
				return false, nil
			}

			xcontext.Logger(ctx).Errorf("Cannot get room participant: %v", err)
			return false, errorx.Unknown
		}
	}

	return true, nil
}

// verifyItem loads the item and checks that the requester owns its holder or
// is the DM of its holder.
func (d *itemDomain) verifyItem(ctx context.Context, id string) (*entity.Item, error) {
	item, err := d.itemRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found item")
		}

		xcontext.Logger(ctx).Errorf("Cannot get item: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.characterVerifier.VerifyOwnerOrDM(ctx, item.CharacterID); err != nil {
		return nil, err
	}

	return item, nil
}

func (d *itemDomain) emitUpdate(ctx context.Context, old *entity.Item) {
	updated, err := d.itemRepo.GetByID(ctx, old.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get updated item: %v", err)
		return
	}

	d.emitter.Update(ctx, model.TableItems, model.ConvertItem(old), model.ConvertItem(updated))
}

func parseItemType(s string) (entity.ItemType, error) {
	if s == "" {
		return entity.ItemGeneral, nil
	}

	itemType, err := enum.ToEnum[entity.ItemType](s)
	if err != nil {
		return "", errorx.New(errorx.BadRequest, "Invalid item type %s", s)
	}

	return itemType, nil
}
