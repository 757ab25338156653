package repository

import (
	"context"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type RoomRepository interface {
	Create(ctx context.Context, data *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	GetByCode(ctx context.Context, code string) (*entity.Room, error)
	UpdateBroadcastImage(ctx context.Context, id, url string) error
	IsDMOfCharacter(ctx context.Context, userID, characterID string) (bool, error)
}

type roomRepository struct{}

func NewRoomRepository() *roomRepository {
	return &roomRepository{}
}

func (r *roomRepository) Create(ctx context.Context, data *entity.Room) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	var result entity.Room
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *roomRepository) GetByCode(ctx context.Context, code string) (*entity.Room, error) {
	var result entity.Room
	if err := xcontext.DB(ctx).Take(&result, "code=?", code).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *roomRepository) UpdateBroadcastImage(ctx context.Context, id, url string) error {
	return updateOne(xcontext.DB(ctx).
		Model(&entity.Room{}).
		Where("id=?", id).
		Update("broadcast_image_url", url))
}

func (r *roomRepository) IsDMOfCharacter(ctx context.Context, userID, characterID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.RoomParticipant{}).
		Joins("join rooms on rooms.id=room_participants.room_id").
		Where("room_participants.character_id=? AND rooms.dm_id=?", characterID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
