package repository

import (
	"context"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type EncounterEnemyRepository interface {
	Create(ctx context.Context, data *entity.EncounterEnemy) error
	GetByID(ctx context.Context, id string) (*entity.EncounterEnemy, error)
	GetByCampaignID(ctx context.Context, campaignID string) ([]entity.EncounterEnemy, error)
	UpdateHP(ctx context.Context, id string, hp int) error
	Delete(ctx context.Context, id string) error
	DeleteByCampaignID(ctx context.Context, campaignID string) ([]entity.EncounterEnemy, error)
}

type encounterEnemyRepository struct{}

func NewEncounterEnemyRepository() *encounterEnemyRepository {
	return &encounterEnemyRepository{}
}

func (r *encounterEnemyRepository) Create(ctx context.Context, data *entity.EncounterEnemy) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *encounterEnemyRepository) GetByID(ctx context.Context, id string) (*entity.EncounterEnemy, error) {
	var result entity.EncounterEnemy
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *encounterEnemyRepository) GetByCampaignID(
	ctx context.Context, campaignID string,
) ([]entity.EncounterEnemy, error) {
	var result []entity.EncounterEnemy
	err := xcontext.DB(ctx).
		Where("campaign_id=?", campaignID).
		Order("initiative DESC").
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *encounterEnemyRepository) UpdateHP(ctx context.Context, id string, hp int) error {
	return updateOne(xcontext.DB(ctx).
		Model(&entity.EncounterEnemy{}).
		Where("id=?", id).
		Update("hp_current", hp))
}

func (r *encounterEnemyRepository) Delete(ctx context.Context, id string) error {
	return updateOne(xcontext.DB(ctx).Delete(&entity.EncounterEnemy{}, "id=?", id))
}

func (r *encounterEnemyRepository) DeleteByCampaignID(
	ctx context.Context, campaignID string,
) ([]entity.EncounterEnemy, error) {
	enemies, err := r.GetByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if len(enemies) == 0 {
		return nil, nil
	}

	err = xcontext.DB(ctx).Delete(&entity.EncounterEnemy{}, "campaign_id=?", campaignID).Error
	if err != nil {
		return nil, err
	}

	return enemies, nil
}
