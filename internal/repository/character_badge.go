package repository

import (
	"context"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type CharacterBadgeRepository interface {
	Create(ctx context.Context, data *entity.CharacterBadge) error
	Exists(ctx context.Context, badgeID, characterID string) (bool, error)
	GetByCharacterID(ctx context.Context, characterID string) ([]entity.CharacterBadge, error)
	DeleteByBadgeID(ctx context.Context, badgeID string) error
	DeleteByCharacterID(ctx context.Context, characterID string) error
}

type characterBadgeRepository struct{}

func NewCharacterBadgeRepository() *characterBadgeRepository {
	return &characterBadgeRepository{}
}

func (r *characterBadgeRepository) Create(ctx context.Context, data *entity.CharacterBadge) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *characterBadgeRepository) Exists(ctx context.Context, badgeID, characterID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.CharacterBadge{}).
		Where("badge_id=? AND character_id=?", badgeID, characterID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *characterBadgeRepository) GetByCharacterID(
	ctx context.Context, characterID string,
) ([]entity.CharacterBadge, error) {
	var result []entity.CharacterBadge
	err := xcontext.DB(ctx).
		Preload("Badge").
		Where("character_id=?", characterID).
		Order("awarded_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *characterBadgeRepository) DeleteByBadgeID(ctx context.Context, badgeID string) error {
	return xcontext.DB(ctx).Delete(&entity.CharacterBadge{}, "badge_id=?", badgeID).Error
}

func (r *characterBadgeRepository) DeleteByCharacterID(ctx context.Context, characterID string) error {
	return xcontext.DB(ctx).Delete(&entity.CharacterBadge{}, "character_id=?", characterID).Error
}
