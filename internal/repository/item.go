package repository

import (
	"context"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type ItemRepository interface {
	Create(ctx context.Context, data *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetByCharacterID(ctx context.Context, characterID string) ([]entity.Item, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Transfer(ctx context.Context, id, fromCharacterID, toCharacterID string) error
	Delete(ctx context.Context, id string) error
	DeleteByCharacterID(ctx context.Context, characterID string) error
}

type itemRepository struct{}

func NewItemRepository() *itemRepository {
	return &itemRepository{}
}

func (r *itemRepository) Create(ctx context.Context, data *entity.Item) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	var result entity.Item
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *itemRepository) GetByCharacterID(ctx context.Context, characterID string) ([]entity.Item, error) {
	var result []entity.Item
	err := xcontext.DB(ctx).
		Where("character_id=?", characterID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *itemRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	return updateOne(xcontext.DB(ctx).
		Model(&entity.Item{}).
		Where("id=?", id).
		Updates(fields))
}

// Transfer moves the item only if it is still held by fromCharacterID, so two
// concurrent transfers of the same item cannot both succeed.
func (r *itemRepository) Transfer(ctx context.Context, id, fromCharacterID, toCharacterID string) error {
	return updateOne(xcontext.DB(ctx).
		Model(&entity.Item{}).
		Where("id=? AND character_id=?", id, fromCharacterID).
		Update("character_id", toCharacterID))
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	return updateOne(xcontext.DB(ctx).Delete(&entity.Item{}, "id=?", id))
}

func (r *itemRepository) DeleteByCharacterID(ctx context.Context, characterID string) error {
	return xcontext.DB(ctx).Delete(&entity.Item{}, "character_id=?", characterID).Error
}
