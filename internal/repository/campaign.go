package repository

import (
	"context"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type CampaignRepository interface {
	Create(ctx context.Context, data *entity.Campaign) error
	GetByID(ctx context.Context, id string) (*entity.Campaign, error)
	GetByJoinCode(ctx context.Context, code string) (*entity.Campaign, error)
	GetByDMID(ctx context.Context, dmID string) ([]entity.Campaign, error)
	GetJoinedByUserID(ctx context.Context, userID string) ([]entity.Campaign, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	IsDMOfCharacter(ctx context.Context, userID, characterID string) (bool, error)
}

type campaignRepository struct{}

func NewCampaignRepository() *campaignRepository {
	return &campaignRepository{}
}

func (r *campaignRepository) Create(ctx context.Context, data *entity.Campaign) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *campaignRepository) GetByID(ctx context.Context, id string) (*entity.Campaign, error) {
	var result entity.Campaign
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *campaignRepository) GetByJoinCode(ctx context.Context, code string) (*entity.Campaign, error) {
	var result entity.Campaign
	if err := xcontext.DB(ctx).Take(&result, "join_code=?", code).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *campaignRepository) GetByDMID(ctx context.Context, dmID string) ([]entity.Campaign, error) {
	var result []entity.Campaign
	err := xcontext.DB(ctx).
		Where("dm_id=?", dmID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetJoinedByUserID returns the campaigns the user joined as a player or a
// spectator.
func (r *campaignRepository) GetJoinedByUserID(ctx context.Context, userID string) ([]entity.Campaign, error) {
	var result []entity.Campaign
	err := xcontext.DB(ctx).
		Model(&entity.Campaign{}).
		Distinct("campaigns.*").
		Joins("join campaign_participants on campaign_participants.campaign_id=campaigns.id").
		Where("campaign_participants.user_id=? AND campaign_participants.role<>?", userID, entity.ParticipantDM).
		Order("campaigns.created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *campaignRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	return updateOne(xcontext.DB(ctx).
		Model(&entity.Campaign{}).
		Where("id=?", id).
		Updates(fields))
}

// IsDMOfCharacter tells whether the user runs a campaign the character takes
// part in.
func (r *campaignRepository) IsDMOfCharacter(ctx context.Context, userID, characterID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.CampaignParticipant{}).
		Joins("join campaigns on campaigns.id=campaign_participants.campaign_id").
		Where("campaign_participants.character_id=? AND campaigns.dm_id=?", characterID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
