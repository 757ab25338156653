package repository

import (
	"context"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type RoomLogRepository interface {
	Create(ctx context.Context, data *entity.RoomLog) error

	// GetLatest returns at most limit logs of the room, newest first.
	GetLatest(ctx context.Context, roomID string, limit int) ([]entity.RoomLog, error)
}

type roomLogRepository struct{}

func NewRoomLogRepository() *roomLogRepository {
	return &roomLogRepository{}
}

func (r *roomLogRepository) Create(ctx context.Context, data *entity.RoomLog) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *roomLogRepository) GetLatest(ctx context.Context, roomID string, limit int) ([]entity.RoomLog, error) {
	var result []entity.RoomLog
	err := xcontext.DB(ctx).
		Where("room_id=?", roomID).
		Order("id DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
