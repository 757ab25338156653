package repository

import (
	"context"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type CharacterRepository interface {
	Create(ctx context.Context, data *entity.Character) error
	GetByID(ctx context.Context, id string) (*entity.Character, error)
	GetByUserID(ctx context.Context, userID string, includeEnemies bool) ([]entity.Character, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	UpdateInitiativeByIDs(ctx context.Context, ids []string, initiative int) error
	Delete(ctx context.Context, id string) error
}

type characterRepository struct{}

func NewCharacterRepository() *characterRepository {
	return &characterRepository{}
}

func (r *characterRepository) Create(ctx context.Context, data *entity.Character) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *characterRepository) GetByID(ctx context.Context, id string) (*entity.Character, error) {
	var result entity.Character
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *characterRepository) GetByUserID(
	ctx context.Context, userID string, includeEnemies bool,
) ([]entity.Character, error) {
	tx := xcontext.DB(ctx).Where("user_id=?", userID)
	if !includeEnemies {
		tx = tx.Where("is_enemy=?", false)
	}

	var result []entity.Character
	if err := tx.Order("created_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// Update writes the given columns. Columns are the database names, e.g.
// hp_current or stats.
func (r *characterRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	return updateOne(xcontext.DB(ctx).
		Model(&entity.Character{}).
		Where("id=?", id).
		Updates(fields))
}

func (r *characterRepository) UpdateInitiativeByIDs(ctx context.Context, ids []string, initiative int) error {
	if len(ids) == 0 {
		return nil
	}

	return xcontext.DB(ctx).
		Model(&entity.Character{}).
		Where("id IN (?)", ids).
		Update("initiative", initiative).Error
}

func (r *characterRepository) Delete(ctx context.Context, id string) error {
	return updateOne(xcontext.DB(ctx).Delete(&entity.Character{}, "id=?", id))
}
