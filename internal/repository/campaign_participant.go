package repository

import (
	"context"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type CampaignParticipantRepository interface {
	// Create reports false when the (campaign, character) pair already
	// exists, in which case nothing is written.
	Create(ctx context.Context, data *entity.CampaignParticipant) (bool, error)
	GetByCampaignID(ctx context.Context, campaignID string) ([]entity.CampaignParticipant, error)
	GetByCampaignAndUser(ctx context.Context, campaignID, userID string) ([]entity.CampaignParticipant, error)
	DeleteByCampaignAndUser(ctx context.Context, campaignID, userID string) ([]entity.CampaignParticipant, error)
	DeleteByCharacterID(ctx context.Context, characterID string) error
}

type campaignParticipantRepository struct{}

func NewCampaignParticipantRepository() *campaignParticipantRepository {
	return &campaignParticipantRepository{}
}

func (r *campaignParticipantRepository) Create(ctx context.Context, data *entity.CampaignParticipant) (bool, error) {
	tx := xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *campaignParticipantRepository) GetByCampaignID(
	ctx context.Context, campaignID string,
) ([]entity.CampaignParticipant, error) {
	var result []entity.CampaignParticipant
	err := xcontext.DB(ctx).
		Preload("User").
		Preload("Character").
		Where("campaign_id=?", campaignID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *campaignParticipantRepository) GetByCampaignAndUser(
	ctx context.Context, campaignID, userID string,
) ([]entity.CampaignParticipant, error) {
	var result []entity.CampaignParticipant
	err := xcontext.DB(ctx).
		Where("campaign_id=? AND user_id=?", campaignID, userID).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteByCampaignAndUser removes the player and spectator rows of the user
// and returns them. The dm row is kept.
func (r *campaignParticipantRepository) DeleteByCampaignAndUser(
	ctx context.Context, campaignID, userID string,
) ([]entity.CampaignParticipant, error) {
	var rows []entity.CampaignParticipant
	err := xcontext.DB(ctx).
		Where("campaign_id=? AND user_id=? AND role<>?", campaignID, userID, entity.ParticipantDM).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, nil
	}

	err = xcontext.DB(ctx).
		Where("campaign_id=? AND user_id=? AND role<>?", campaignID, userID, entity.ParticipantDM).
		Delete(&entity.CampaignParticipant{}).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *campaignParticipantRepository) DeleteByCharacterID(ctx context.Context, characterID string) error {
	return xcontext.DB(ctx).
		Where("character_id=?", characterID).
		Delete(&entity.CampaignParticipant{}).Error
}
