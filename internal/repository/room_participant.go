package repository

import (
	"context"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type RoomParticipantRepository interface {
	// Upsert inserts the row or does nothing when (room, character) already
	// exists. It reports whether a row was inserted.
	Upsert(ctx context.Context, data *entity.RoomParticipant) (bool, error)
	Get(ctx context.Context, roomID, characterID string) (*entity.RoomParticipant, error)
	GetByRoomID(ctx context.Context, roomID string) ([]entity.RoomParticipant, error)
	GetByRoomAndUser(ctx context.Context, roomID, userID string) ([]entity.RoomParticipant, error)
	DeleteByRoomAndUser(ctx context.Context, roomID, userID string) ([]entity.RoomParticipant, error)
	DeleteByCharacterID(ctx context.Context, characterID string) error
}

type roomParticipantRepository struct{}

func NewRoomParticipantRepository() *roomParticipantRepository {
	return &roomParticipantRepository{}
}

func (r *roomParticipantRepository) Upsert(ctx context.Context, data *entity.RoomParticipant) (bool, error) {
	tx := xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "character_id"}},
			DoNothing: true,
		}).
		Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *roomParticipantRepository) Get(
	ctx context.Context, roomID, characterID string,
) (*entity.RoomParticipant, error) {
	var result entity.RoomParticipant
	err := xcontext.DB(ctx).
		Preload("Character").
		Take(&result, "room_id=? AND character_id=?", roomID, characterID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *roomParticipantRepository) GetByRoomID(ctx context.Context, roomID string) ([]entity.RoomParticipant, error) {
	var result []entity.RoomParticipant
	err := xcontext.DB(ctx).
		Preload("Character").
		Where("room_id=?", roomID).
		Order("joined_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *roomParticipantRepository) GetByRoomAndUser(
	ctx context.Context, roomID, userID string,
) ([]entity.RoomParticipant, error) {
	var result []entity.RoomParticipant
	err := xcontext.DB(ctx).
		Preload("Character").
		Where("room_id=? AND user_id=?", roomID, userID).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *roomParticipantRepository) DeleteByRoomAndUser(
	ctx context.Context, roomID, userID string,
) ([]entity.RoomParticipant, error) {
	rows, err := r.GetByRoomAndUser(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, nil
	}

	err = xcontext.DB(ctx).
		Where("room_id=? AND user_id=?", roomID, userID).
		Delete(&entity.RoomParticipant{}).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *roomParticipantRepository) DeleteByCharacterID(ctx context.Context, characterID string) error {
	return xcontext.DB(ctx).
		Where("character_id=?", characterID).
		Delete(&entity.RoomParticipant{}).Error
}
